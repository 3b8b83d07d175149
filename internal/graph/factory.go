package graph

import (
	"path/filepath"

	"inlet/internal/ast"
	"inlet/internal/cache"
	"inlet/internal/config"
	"inlet/internal/js_ast"
	"inlet/internal/logger"
	"inlet/internal/resolver"
	"inlet/internal/scanner"
)

// Dependencies shared by every view construction in one build: the
// concurrency-safe diagnostic sink, the build options, and the manifest
// cache so modules in one npm package share a single parse.
type CreateModuleContext struct {
	Log     logger.Log
	Options *config.Options
	Caches  *cache.PackageJSONCache
}

// Everything needed to build one module's view. The tree arrives pre-bound
// from the parser front-end, which was told the module's graph index and
// minted every Ref with it.
type ModuleInput struct {
	// The module's index in the module graph
	Index uint32

	Resolved   resolver.ResolvedID
	Contents   string
	ModuleType config.ModuleType

	// Raw contents of the enclosing package.json when the resolver has not
	// parsed it yet. Ignored when Resolved.PackageJSON is already set; parsed
	// through the shared cache otherwise.
	Manifest *logger.Source

	// Verdict attached by load/transform hooks, if any
	HookSideEffects HookSideEffects

	// Source maps from the loaders and transforms that already rewrote this
	// module, in application order. Passed through to the view untouched.
	SourcemapChain [][]byte

	Tree *js_ast.AST
}

// The quartet a successful construction hands back: the immutable view, the
// import records the resolver will fill in, the finished tree, and the
// module's symbol table ready to be slotted into the graph-wide SymbolMap.
// ImportRecords aliases View.ImportRecords; the resolver writes target
// indices into it in place.
type CreateModuleViewResult struct {
	View          ModuleView
	ImportRecords []ast.ImportRecord
	AST           *js_ast.AST
	Symbols       js_ast.SymbolTable
}

// CreateModuleView runs the scan, resolves the side-effects verdict, and
// assembles the view. Construction is atomic: any scan error aborts with no
// partial view, and the error carries every message from the failed scan.
// Warnings always land in the shared log, even on failure.
func CreateModuleView(c CreateModuleContext, input ModuleInput) (CreateModuleViewResult, error) {
	source := logger.Source{
		Index:          input.Index,
		KeyPath:        input.Resolved.Path,
		PrettyPath:     stableID(c.Options.Cwd, input.Resolved.Path),
		IdentifierName: ast.GenerateNonUniqueNameFromPath(input.Resolved.Path.Text),
		Contents:       input.Contents,
	}

	symbols, scopes := scanner.MakeScopesAndSymbols(input.Index, input.Tree)
	scan := scanner.NewAstScanner(&source, input.Tree, symbols, scopes, input.Resolved.ModuleDefFormat).Scan()

	for _, msg := range scan.Warnings {
		c.Log.AddMsg(msg)
	}
	if len(scan.Errors) > 0 {
		for _, msg := range scan.Errors {
			c.Log.AddMsg(msg)
		}
		return CreateModuleViewResult{}, logger.MsgsToError(scan.Errors)
	}

	manifest := input.Resolved.PackageJSON
	if manifest == nil && input.Manifest != nil && c.Caches != nil {
		manifest = c.Caches.Parse(c.Log, *input.Manifest)
	}

	sideEffects := ResolveSideEffects(
		input.ModuleType,
		input.HookSideEffects,
		c.Options.Treeshake,
		source.PrettyPath,
		LazySideEffectsCheck(
			manifest,
			manifestRelPath(manifest, input.Resolved.Path),
			scan.StmtInfos,
		),
	)

	var meta ViewMeta
	if scan.HasEval {
		meta |= MetaHasEval
	}
	if input.Tree.HasLazyExport {
		meta |= MetaHasLazyExport
	}
	if scan.HasStarExports {
		meta |= MetaHasStarExports
	}

	view := ModuleView{
		Source:     source,
		StableID:   source.PrettyPath,
		DefFormat:  input.Resolved.ModuleDefFormat,
		ModuleType: input.ModuleType,

		NamedImports:      scan.NamedImports,
		NamedExports:      scan.NamedExports,
		ImportRecords:     scan.ImportRecords,
		ExportStarRecords: scan.ExportStarRecords,
		DynamicImports:    scan.DynamicImports,

		StmtInfos: scan.StmtInfos,

		DefaultExportRef:            scan.DefaultExportRef,
		NamespaceObjectRef:          scan.NamespaceObjectRef,
		SelfReferencedClassDeclRefs: scan.SelfReferencedClassDeclRefs,

		ExportsKind: scan.ExportsKind,
		SideEffects: sideEffects,
		Meta:        meta,

		Scopes:         scan.Scopes,
		SourcemapChain: input.SourcemapChain,
	}

	return CreateModuleViewResult{
		View:          view,
		ImportRecords: view.ImportRecords,
		AST:           input.Tree,
		Symbols:       scan.Symbols,
	}, nil
}

// The stabilized module identifier: relative to the working directory with
// forward slashes so builds reproduce across machines. Virtual-namespace
// paths pass through untouched.
func stableID(cwd string, path logger.Path) string {
	if path.Namespace != "" && path.Namespace != "file" {
		return path.Text
	}
	if cwd != "" {
		if rel, err := filepath.Rel(cwd, path.Text); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path.Text)
}

// The module's path relative to the directory holding its package.json,
// which is what "sideEffects" globs are matched against.
func manifestRelPath(manifest *resolver.PackageJSON, modulePath logger.Path) string {
	if manifest == nil {
		return ""
	}
	manifestDir := filepath.Dir(manifest.Path.Text)
	if rel, err := filepath.Rel(manifestDir, modulePath.Text); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(modulePath.Text)
}
