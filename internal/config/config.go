package config

// The type of content in a module. This decides which front-end parses the
// module and also feeds the side-effects verdict: stylesheet modules are
// unconditionally side-effecting because removing them changes the page's
// styling even without script-level effects.
type ModuleType uint8

const (
	ModuleJS ModuleType = iota
	ModuleJSX
	ModuleTS
	ModuleTSX
	ModuleJSON
	ModuleCSS
	ModuleText
	ModuleEmpty
)

func (t ModuleType) IsCSS() bool {
	return t == ModuleCSS
}

// The module system a file uses, as detected by the resolver from the file
// extension and the nearest package.json "type" field.
type ModuleDefFormat uint8

const (
	DefFormatUnknown ModuleDefFormat = iota

	// ".mjs"/".mts" extension
	DefFormatESM

	// "type: module" in the enclosing package.json
	DefFormatESMPackageJSON

	// ".cjs"/".cts" extension
	DefFormatCJS

	// "type: commonjs" in the enclosing package.json
	DefFormatCJSPackageJSON
)

func (f ModuleDefFormat) IsESM() bool {
	return f == DefFormatESM || f == DefFormatESMPackageJSON
}

func (f ModuleDefFormat) IsCJS() bool {
	return f == DefFormatCJS || f == DefFormatCJSPackageJSON
}

// Controls whether statements and whole modules may be dropped from the
// output when nothing uses them.
type TreeshakeOptions struct {
	// When false, tree shaking is disabled globally and every module's
	// side-effects verdict short-circuits to "no treeshake" before any other
	// signal is consulted.
	Enabled bool

	// Optional per-module policy keyed by the module's stabilized path. Nil
	// treats every module as a candidate. Returning false pins the verdict
	// to an explicit "no side effects" override and skips static analysis
	// entirely; it is not merged with analysis results.
	ModuleSideEffects func(stablePath string) bool
}

// Resolves the per-module policy for one module.
func (t TreeshakeOptions) ModuleIsCandidate(stablePath string) bool {
	if t.ModuleSideEffects == nil {
		return true
	}
	return t.ModuleSideEffects(stablePath)
}

type Options struct {
	// Used to compute stable, reproducible relative identifiers for
	// diagnostics and output
	Cwd string

	Treeshake TreeshakeOptions
}
