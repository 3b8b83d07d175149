package graph

import (
	"inlet/internal/ast"
	"inlet/internal/config"
	"inlet/internal/js_ast"
	"inlet/internal/logger"
	"inlet/internal/scanner"
)

// Boolean facts about a module packed into one word. MetaIncluded always
// starts false; the tree-shaking stage sets it when the module survives.
type ViewMeta uint8

const (
	MetaIncluded ViewMeta = 1 << iota
	MetaHasEval
	MetaHasLazyExport
	MetaHasStarExports
)

func (m ViewMeta) Has(flag ViewMeta) bool {
	return (m & flag) != 0
}

// ModuleView is the complete analyzed form of one module: everything the
// linker needs to know about the module's import/export surface and its
// side-effect behavior. Construction is all-or-nothing; once built, nothing
// here changes. Graph stages that need to record cross-module relationships
// write into the companion ModuleLinks instead.
type ModuleView struct {
	// Identity: graph index, canonical path, stabilized pretty path, and the
	// representative identifier name derived from the file path
	Source logger.Source

	// The stabilized, reproducible identifier used in diagnostics and as the
	// key for per-module policies (cwd-relative, forward slashes)
	StableID string

	DefFormat  config.ModuleDefFormat
	ModuleType config.ModuleType

	// Import/export surface, all in source order
	NamedImports      []js_ast.NamedImport
	NamedExports      []js_ast.NamedExport
	ImportRecords     []ast.ImportRecord
	ExportStarRecords []uint32
	DynamicImports    []uint32

	// Per-top-level-statement classification
	StmtInfos []scanner.StmtInfo

	// InvalidRef when the module has no default export
	DefaultExportRef js_ast.Ref

	NamespaceObjectRef          js_ast.Ref
	SelfReferencedClassDeclRefs []js_ast.Ref

	ExportsKind js_ast.ExportsKind
	SideEffects DeterminedSideEffects
	Meta        ViewMeta

	// The adapted lexical scope tree, kept on the view so renaming and
	// linking can answer binding queries without re-walking the tree
	Scopes scanner.AstScopes

	// Source maps accumulated by the loaders and transforms that rewrote
	// this module before ingestion. Opaque here: the chain is attached
	// unmodified and only chunk generation remaps through it.
	SourcemapChain [][]byte
}

// ModuleLinks is the mutable extension of a ModuleView, split out so the view
// itself can be shared freely between stages without synchronization. The
// linking stage owns one ModuleLinks per module and appends as it walks
// resolved import records.
type ModuleLinks struct {
	// Modules that import this one, by graph index
	Importers        []uint32
	DynamicImporters []uint32

	// Modules this one imports, by graph index
	ImportedIDs            []uint32
	DynamicallyImportedIDs []uint32

	// Deferred edits to the module recorded while linking and applied in a
	// later pass, so the view itself stays untouched until every stage has
	// finished reading it. Starts empty and is append-only.
	Mutations []ViewMutation
}

// A deferred edit to one module's view.
type ViewMutation func(view *ModuleView)

func (l *ModuleLinks) AddMutation(mutation ViewMutation) {
	l.Mutations = append(l.Mutations, mutation)
}

func (l *ModuleLinks) AddImporter(index uint32, kind ast.ImportKind) {
	if kind == ast.ImportDynamic {
		l.DynamicImporters = append(l.DynamicImporters, index)
	} else {
		l.Importers = append(l.Importers, index)
	}
}

func (l *ModuleLinks) AddImported(index uint32, kind ast.ImportKind) {
	if kind == ast.ImportDynamic {
		l.DynamicallyImportedIDs = append(l.DynamicallyImportedIDs, index)
	} else {
		l.ImportedIDs = append(l.ImportedIDs, index)
	}
}
