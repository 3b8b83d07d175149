package graph

import (
	"inlet/internal/config"
	"inlet/internal/resolver"
	"inlet/internal/scanner"
)

// The side-effects verdict a load or transform hook attached to a module.
// Hooks speak in three values, not two: they can confirm effects, deny them,
// or opt the module out of tree shaking entirely.
type HookSideEffects uint8

const (
	// The hook made no statement
	HookSideEffectsNone HookSideEffects = iota

	// The hook says the module has side effects. This is not final: the
	// package manifest and static analysis may still downgrade it.
	HookSideEffectsTrue

	// The hook says the module has no side effects. Final.
	HookSideEffectsFalse

	// The module must never be tree shaken
	HookSideEffectsNoTreeshake
)

type sideEffectsKind uint8

const (
	sideEffectsUserDefined sideEffectsKind = iota
	sideEffectsAnalyzed
	sideEffectsNoTreeshake
)

// The final side-effects verdict for one module. It is computed exactly once
// during view construction and never revised; the kind records which layer
// produced the value so diagnostics can explain the decision.
type DeterminedSideEffects struct {
	kind  sideEffectsKind
	value bool
}

// A verdict stated by the user: a hook return value, a tree-shake option
// predicate, or a package.json "sideEffects" declaration.
func UserDefinedSideEffects(value bool) DeterminedSideEffects {
	return DeterminedSideEffects{kind: sideEffectsUserDefined, value: value}
}

// A verdict derived from the per-statement analysis (or from the module type,
// for stylesheets).
func AnalyzedSideEffects(value bool) DeterminedSideEffects {
	return DeterminedSideEffects{kind: sideEffectsAnalyzed, value: value}
}

// The module is excluded from tree shaking entirely.
func NoTreeshakeSideEffects() DeterminedSideEffects {
	return DeterminedSideEffects{kind: sideEffectsNoTreeshake}
}

// HasSideEffects reports whether the module must be retained even when
// nothing imports from it.
func (d DeterminedSideEffects) HasSideEffects() bool {
	if d.kind == sideEffectsNoTreeshake {
		return true
	}
	return d.value
}

func (d DeterminedSideEffects) IsUserDefined() bool { return d.kind == sideEffectsUserDefined }
func (d DeterminedSideEffects) IsAnalyzed() bool    { return d.kind == sideEffectsAnalyzed }
func (d DeterminedSideEffects) IsNoTreeshake() bool { return d.kind == sideEffectsNoTreeshake }

func (d DeterminedSideEffects) String() string {
	switch d.kind {
	case sideEffectsNoTreeshake:
		return "no-treeshake"
	case sideEffectsUserDefined:
		if d.value {
			return "user-defined(true)"
		}
		return "user-defined(false)"
	default:
		if d.value {
			return "analyzed(true)"
		}
		return "analyzed(false)"
	}
}

// ResolveSideEffects layers the verdict sources in precedence order. The
// expensive layers (manifest glob matching and the statement scan results)
// are behind lazyCheck so that verdicts decided by an earlier layer never pay
// for them:
//
//  1. tree shaking disabled globally
//  2. stylesheet modules always have effects
//  3. an explicit hook verdict (a "true" verdict still defers to the
//     manifest and analysis, matching the hook contract)
//  4. the per-module tree-shake predicate, consulted only when no hook spoke
//  5. lazyCheck: package.json "sideEffects", then static analysis
func ResolveSideEffects(
	moduleType config.ModuleType,
	hook HookSideEffects,
	treeshake config.TreeshakeOptions,
	stableID string,
	lazyCheck func() DeterminedSideEffects,
) DeterminedSideEffects {
	if !treeshake.Enabled {
		return NoTreeshakeSideEffects()
	}

	if moduleType.IsCSS() {
		// Removing a stylesheet changes the page even when no script
		// references it
		return AnalyzedSideEffects(true)
	}

	switch hook {
	case HookSideEffectsTrue:
		return lazyCheck()
	case HookSideEffectsFalse:
		return UserDefinedSideEffects(false)
	case HookSideEffectsNoTreeshake:
		return NoTreeshakeSideEffects()
	}

	if !treeshake.ModuleIsCandidate(stableID) {
		return UserDefinedSideEffects(false)
	}

	return lazyCheck()
}

// LazySideEffectsCheck builds the deferred bottom layer for one module: the
// package manifest declaration when present, otherwise a scan over the
// per-statement flags. The manifest-relative path must already be computed by
// the caller since only it knows the module's file-system location.
func LazySideEffectsCheck(
	manifest *resolver.PackageJSON,
	manifestRelPath string,
	stmtInfos []scanner.StmtInfo,
) func() DeterminedSideEffects {
	return func() DeterminedSideEffects {
		if manifest != nil {
			if value, ok := manifest.CheckSideEffectsFor(manifestRelPath); ok {
				return UserDefinedSideEffects(value)
			}
		}
		for _, info := range stmtInfos {
			if info.SideEffect {
				return AnalyzedSideEffects(true)
			}
		}
		return AnalyzedSideEffects(false)
	}
}
