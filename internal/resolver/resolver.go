package resolver

// Module resolution itself (turning import specifiers into file paths) is an
// external collaborator. This package only declares the shape of its output,
// which the ingestion pipeline consumes as already-computed input.

import (
	"inlet/internal/config"
	"inlet/internal/logger"
)

// The result of resolving one module: its canonical identity, the module
// system detected for it, and the package manifest it belongs to, if any.
type ResolvedID struct {
	Path logger.Path

	// The manifest of the enclosing npm package, carrying the "sideEffects"
	// declaration. Nil for modules outside any package.
	PackageJSON *PackageJSON

	ModuleDefFormat config.ModuleDefFormat
}
