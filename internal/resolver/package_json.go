package resolver

import (
	"encoding/json"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"inlet/internal/logger"
)

// The "sideEffects" convention comes from Webpack:
// https://webpack.js.org/guides/tree-shaking/. A package can declare that
// either none of its files have side effects ("sideEffects": false) or that
// only the listed files do ("sideEffects": ["./foo.js", "*.css"]).
//
// Note that if a file is listed, all statements that can't be proven to be
// free of side effects must be included. The convention says nothing about
// whether individual statements within the file have side effects or not.
type PackageJSON struct {
	// Absolute path of the "package.json" file itself. Glob patterns are
	// evaluated against module paths made relative to this file's directory.
	Path logger.Path

	// Exact relative paths with side effects. Nil when "sideEffects" is a
	// boolean or absent.
	sideEffectsMap map[string]bool

	// Patterns containing wildcards, matched with doublestar semantics
	sideEffectsGlobs []string

	// Set when "sideEffects" is a boolean
	sideEffectsBool *bool
}

// Reports whether the module at the given manifest-relative path has side
// effects according to this package's "sideEffects" declaration. The second
// return value is false when the manifest makes no declaration, in which
// case the caller must fall back to static analysis.
func (p *PackageJSON) CheckSideEffectsFor(relPath string) (bool, bool) {
	relPath = normalizeSideEffectsPath(relPath)

	if p.sideEffectsBool != nil {
		return *p.sideEffectsBool, true
	}

	if p.sideEffectsMap == nil && p.sideEffectsGlobs == nil {
		return false, false
	}

	if p.sideEffectsMap[relPath] {
		return true, true
	}
	for _, pattern := range p.sideEffectsGlobs {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true, true
		}
	}
	return false, true
}

// ParsePackageJSON reads the "sideEffects" field out of raw package.json
// contents. Malformed values produce warnings and are ignored, matching the
// convention's forgiving behavior. The source's key path must be the
// manifest's own absolute path.
func ParsePackageJSON(log logger.Log, source logger.Source) *PackageJSON {
	packageJSON := &PackageJSON{Path: source.KeyPath}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(source.Contents), &fields); err != nil {
		log.AddError(&source, logger.Loc{}, "Cannot parse \"package.json\": "+err.Error())
		return nil
	}

	raw, ok := fields["sideEffects"]
	if !ok {
		return packageJSON
	}

	var boolValue bool
	if err := json.Unmarshal(raw, &boolValue); err == nil {
		packageJSON.sideEffectsBool = &boolValue
		return packageJSON
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.AddWarning(&source, logger.Loc{},
			"The value for \"sideEffects\" must be a boolean or an array")
		return packageJSON
	}

	// The array form means only the listed files have side effects
	packageJSON.sideEffectsMap = make(map[string]bool)
	for _, itemJSON := range items {
		var item string
		if err := json.Unmarshal(itemJSON, &item); err != nil {
			log.AddWarning(&source, logger.Loc{},
				"Expected string in array for \"sideEffects\"")
			continue
		}

		pattern := normalizeSideEffectsPath(item)

		// Patterns without a slash match the base name in any directory,
		// following Webpack. "*.css" matches "dist/style.css".
		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}

		if strings.ContainsAny(pattern, "*?[{") {
			packageJSON.sideEffectsGlobs = append(packageJSON.sideEffectsGlobs, pattern)
			continue
		}

		// Plain paths can be matched with a map lookup
		packageJSON.sideEffectsMap[pattern] = true
	}

	return packageJSON
}

func normalizeSideEffectsPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return path
}
