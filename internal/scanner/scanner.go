package scanner

import (
	"fmt"

	"inlet/internal/ast"
	"inlet/internal/config"
	"inlet/internal/js_ast"
	"inlet/internal/logger"
)

// Coarse booleans summarizing which syntax constructs appear in a module.
// Later passes use these to skip work: a module with no CommonJS features
// never needs an interop wrapper, a module with no ES6 syntax can skip
// export matching, and so on.
type AstUsage uint8

const (
	UsesESMImports AstUsage = 1 << iota
	UsesESMExports
	UsesModuleRef
	UsesExportsRef
	UsesRequireCall
)

func (u AstUsage) Has(flag AstUsage) bool {
	return (u & flag) != 0
}

// One entry per top-level statement, in source order. The side-effect flag
// is immutable once computed; the symbol lists feed dead-statement
// elimination during tree shaking.
type StmtInfo struct {
	// Index of the statement in the module body
	StmtIndex uint32

	// True unless the statement is provably a pure declaration with no
	// observable external effect
	SideEffect bool

	// Top-level bindings this statement introduces
	DeclaredSymbols []js_ast.Ref

	// Every symbol the statement references, including inside nested
	// function bodies
	ReferencedSymbols []js_ast.Ref

	// Indices into the module's import record list minted while scanning
	// this statement
	ImportRecordIndices []uint32
}

// Everything the single-pass scan of one module produces. Slices are in
// source order throughout; this ordering is significant for deterministic
// output and must be preserved by consumers.
type ScanResult struct {
	NamedImports []js_ast.NamedImport
	NamedExports []js_ast.NamedExport
	StmtInfos    []StmtInfo

	ImportRecords []ast.ImportRecord

	// Indices into ImportRecords for "export * from" statements. These need
	// deferred resolution because the exact export set is only knowable
	// after the target module has been scanned.
	ExportStarRecords []uint32

	// Indices into ImportRecords for dynamic "import()" expressions
	DynamicImports []uint32

	// InvalidRef when the module has no default export
	DefaultExportRef js_ast.Ref

	// The synthetic binding representing "import * as ns" of this module.
	// Always allocated, whether or not the module is ever imported that way.
	NamespaceObjectRef js_ast.Ref

	// Class declarations whose body references their own binding. These
	// require special treatment during renaming and inlining.
	SelfReferencedClassDeclRefs []js_ast.Ref

	ExportsKind    js_ast.ExportsKind
	Usage          AstUsage
	HasEval        bool
	HasStarExports bool

	Errors   []logger.Msg
	Warnings []logger.Msg

	// The module's symbol table including the synthetic symbols minted
	// during the scan, and the adapted scope wrapper
	Symbols js_ast.SymbolTable
	Scopes  AstScopes
}

// AstScanner performs a single forward pass over a module body. One scanner
// exists per module and is not reused.
type AstScanner struct {
	source    *logger.Source
	tree      *js_ast.AST
	defFormat config.ModuleDefFormat

	result  ScanResult
	current *StmtInfo

	// Alias -> location of the first export with that alias, for duplicate
	// detection
	exportedAliases map[string]logger.Loc

	// Class-name bindings of the classes currently being walked, innermost
	// last
	enclosingClassRefs []js_ast.Ref
	selfReferenced     map[js_ast.Ref]bool
}

func NewAstScanner(
	source *logger.Source,
	tree *js_ast.AST,
	symbols js_ast.SymbolTable,
	scopes AstScopes,
	defFormat config.ModuleDefFormat,
) *AstScanner {
	s := &AstScanner{
		source:          source,
		tree:            tree,
		defFormat:       defFormat,
		exportedAliases: make(map[string]logger.Loc),
		selfReferenced:  make(map[js_ast.Ref]bool),
	}
	s.result.Symbols = symbols
	s.result.Scopes = scopes
	s.result.DefaultExportRef = js_ast.InvalidRef

	// The namespace object is allocated up front so "import * as ns" in any
	// importer can bind to it without re-entering this module
	s.result.NamespaceObjectRef = s.result.Symbols.CreateSymbol(
		js_ast.SymbolOther, source.IdentifierName+"_ns")
	if scopes.Module != nil {
		scopes.Module.Generated = append(scopes.Module.Generated, s.result.NamespaceObjectRef)
	}

	return s
}

// Scan traverses the module body once and returns the complete result. Any
// errors in the result abort module-view construction; the caller must not
// use the rest of the result when errors are present.
func (s *AstScanner) Scan() ScanResult {
	if s.tree.ModuleScope != nil && s.tree.ModuleScope.ContainsDirectEval {
		s.result.HasEval = true
	}

	for i, stmt := range s.tree.Stmts {
		s.scanTopLevelStmt(uint32(i), stmt)
	}

	s.finalizeExportsKind()

	if s.result.HasEval {
		s.markSymbolsUnrenamable()
	}

	return s.result
}

func (s *AstScanner) scanTopLevelStmt(index uint32, stmt js_ast.Stmt) {
	info := StmtInfo{StmtIndex: index}
	s.current = &info

	switch st := stmt.Data.(type) {
	case *js_ast.SImport:
		s.result.Usage |= UsesESMImports

		var flags ast.ImportRecordFlags
		if st.DefaultName != nil {
			flags |= ast.ContainsDefaultAlias
		}
		if st.StarNameLoc != nil {
			flags |= ast.ContainsImportStar
		}
		if st.DefaultName == nil && st.StarNameLoc == nil && st.Items == nil {
			flags |= ast.WasOriginallyBareImport
		}
		recordIndex := s.addImportRecord(ast.ImportStmt, st.Path, flags)

		if st.DefaultName != nil {
			s.addNamedImport(js_ast.NamedImport{
				Alias:             "default",
				AliasLoc:          st.DefaultName.Loc,
				ImportedAs:        st.DefaultName.Ref,
				ImportRecordIndex: recordIndex,
			})
			s.declareSymbol(st.DefaultName.Ref)
		}
		if st.StarNameLoc != nil {
			s.addNamedImport(js_ast.NamedImport{
				Alias:             "*",
				AliasLoc:          *st.StarNameLoc,
				ImportedAs:        st.NamespaceRef,
				ImportRecordIndex: recordIndex,
			})
			s.declareSymbol(st.NamespaceRef)
		}
		if st.Items != nil {
			for _, item := range *st.Items {
				s.addNamedImport(js_ast.NamedImport{
					Alias:             item.Alias,
					AliasLoc:          item.AliasLoc,
					ImportedAs:        item.Name.Ref,
					ImportRecordIndex: recordIndex,
				})
				s.declareSymbol(item.Name.Ref)
			}
		}

	case *js_ast.SExportClause:
		s.result.Usage |= UsesESMExports
		for _, item := range st.Items {
			s.addNamedExport(item.Alias, item.AliasLoc, item.Name.Ref)
			s.referenceSymbol(item.Name.Ref)
		}

	case *js_ast.SExportFrom:
		s.result.Usage |= UsesESMExports
		recordIndex := s.addImportRecord(ast.ImportStmt, st.Path, 0)
		for _, item := range st.Items {
			// A re-export is both an import and an export. The local binding
			// exists only to connect the two records during linking.
			s.addNamedImport(js_ast.NamedImport{
				Alias:             item.OriginalName,
				AliasLoc:          item.AliasLoc,
				ImportedAs:        item.Name.Ref,
				ImportRecordIndex: recordIndex,
				IsExported:        true,
			})
			s.addNamedExport(item.Alias, item.AliasLoc, item.Name.Ref)
			s.declareSymbol(item.Name.Ref)
		}

	case *js_ast.SExportStar:
		s.result.Usage |= UsesESMExports
		recordIndex := s.addImportRecord(ast.ImportStmt, st.Path, ast.ContainsImportStar)
		if st.Alias != nil {
			// "export * as ns from 'path'"
			s.addNamedImport(js_ast.NamedImport{
				Alias:             "*",
				AliasLoc:          st.Alias.Loc,
				ImportedAs:        st.NamespaceRef,
				ImportRecordIndex: recordIndex,
				IsExported:        true,
			})
			s.addNamedExport(st.Alias.Name, st.Alias.Loc, st.NamespaceRef)
			s.declareSymbol(st.NamespaceRef)
		} else {
			// "export * from 'path'" requires deferred resolution
			s.result.ExportStarRecords = append(s.result.ExportStarRecords, recordIndex)
			s.result.HasStarExports = true
		}

	case *js_ast.SExportDefault:
		s.result.Usage |= UsesESMExports
		ref := st.DefaultName.Ref
		if ref == js_ast.InvalidRef {
			// An unnamed "export default" still needs a binding so importers
			// have something to link against
			ref = s.result.Symbols.CreateSymbol(
				js_ast.SymbolOther, s.source.IdentifierName+"_default")
			st.DefaultName.Ref = ref
		}
		if s.result.DefaultExportRef != js_ast.InvalidRef {
			s.addError(logger.Range{Loc: st.DefaultName.Loc},
				"Multiple default exports are not allowed")
		} else {
			s.result.DefaultExportRef = ref
			s.addNamedExport("default", st.DefaultName.Loc, ref)
		}
		s.declareSymbol(ref)
		s.walkStmt(stmt)

	case *js_ast.SLocal:
		for _, decl := range st.Decls {
			s.declareBinding(decl.Binding, st.IsExport)
		}
		s.walkStmt(stmt)

	case *js_ast.SFunction:
		if st.Fn.Name != nil {
			s.declareSymbol(st.Fn.Name.Ref)
			if st.IsExport {
				s.result.Usage |= UsesESMExports
				s.addNamedExport(s.result.Symbols.Get(st.Fn.Name.Ref).OriginalName,
					st.Fn.Name.Loc, st.Fn.Name.Ref)
			}
		}
		s.walkStmt(stmt)

	case *js_ast.SClass:
		if st.Class.Name != nil {
			s.declareSymbol(st.Class.Name.Ref)
			if st.IsExport {
				s.result.Usage |= UsesESMExports
				s.addNamedExport(s.result.Symbols.Get(st.Class.Name.Ref).OriginalName,
					st.Class.Name.Loc, st.Class.Name.Ref)
			}
		}
		s.walkStmt(stmt)

	default:
		s.walkStmt(stmt)
	}

	info.SideEffect = !js_ast.StmtCanBeRemovedIfUnused(stmt, &s.result.Symbols)
	s.result.StmtInfos = append(s.result.StmtInfos, info)
	s.current = nil
}

func (s *AstScanner) addImportRecord(kind ast.ImportKind, path js_ast.ImportPath, flags ast.ImportRecordFlags) uint32 {
	index := uint32(len(s.result.ImportRecords))
	s.result.ImportRecords = append(s.result.ImportRecords, ast.ImportRecord{
		Path:  logger.Path{Text: path.Text},
		Range: path.Range,
		Kind:  kind,
		Flags: flags,
	})
	if s.current != nil {
		s.current.ImportRecordIndices = append(s.current.ImportRecordIndices, index)
	}
	return index
}

func (s *AstScanner) addNamedImport(namedImport js_ast.NamedImport) {
	s.result.NamedImports = append(s.result.NamedImports, namedImport)
}

func (s *AstScanner) addNamedExport(alias string, loc logger.Loc, ref js_ast.Ref) {
	if _, ok := s.exportedAliases[alias]; ok {
		s.addError(logger.Range{Loc: loc},
			fmt.Sprintf("Multiple exports with the same name %q", alias))
		return
	}
	s.exportedAliases[alias] = loc
	s.result.NamedExports = append(s.result.NamedExports, js_ast.NamedExport{
		Alias:    alias,
		AliasLoc: loc,
		Ref:      ref,
	})
}

func (s *AstScanner) declareSymbol(ref js_ast.Ref) {
	if ref == js_ast.InvalidRef || s.current == nil {
		return
	}
	s.current.DeclaredSymbols = append(s.current.DeclaredSymbols, ref)
}

// Declares every identifier inside a (possibly destructuring) binding, and
// exports each one when the declaration is an "export const/let/var".
func (s *AstScanner) declareBinding(binding js_ast.Binding, isExport bool) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		s.declareSymbol(b.Ref)
		if isExport {
			s.result.Usage |= UsesESMExports
			symbol := s.result.Symbols.Get(b.Ref)
			s.addNamedExport(symbol.OriginalName, binding.Loc, b.Ref)
		}

	case *js_ast.BArray:
		for _, item := range b.Items {
			s.declareBinding(item.Binding, isExport)
		}

	case *js_ast.BObject:
		for _, property := range b.Properties {
			s.declareBinding(property.Value, isExport)
		}
	}
}

func (s *AstScanner) referenceSymbol(ref js_ast.Ref) {
	if ref == js_ast.InvalidRef {
		return
	}
	if s.current != nil {
		s.current.ReferencedSymbols = append(s.current.ReferencedSymbols, ref)
	}

	for _, classRef := range s.enclosingClassRefs {
		if classRef == ref && !s.selfReferenced[ref] {
			s.selfReferenced[ref] = true
			s.result.SelfReferencedClassDeclRefs = append(s.result.SelfReferencedClassDeclRefs, ref)
		}
	}

	symbol := s.result.Symbols.Get(ref)
	symbol.UseCountEstimate++

	if symbol.Kind == js_ast.SymbolUnbound {
		switch symbol.OriginalName {
		case "module":
			s.result.Usage |= UsesModuleRef
		case "exports":
			s.result.Usage |= UsesExportsRef
		}
	}
}

func (s *AstScanner) finalizeExportsKind() {
	switch {
	case s.result.Usage.Has(UsesESMImports) || s.result.Usage.Has(UsesESMExports) ||
		s.defFormat.IsESM() || s.tree.HasLazyExport:
		s.result.ExportsKind = js_ast.ExportsESM

	case s.result.Usage.Has(UsesModuleRef) || s.result.Usage.Has(UsesExportsRef) ||
		s.result.Usage.Has(UsesRequireCall) || s.defFormat.IsCJS():
		s.result.ExportsKind = js_ast.ExportsCommonJS

	default:
		s.result.ExportsKind = js_ast.ExportsNone
	}
}

// Direct eval can reference anything in scope by name, so nothing in this
// module may be renamed.
func (s *AstScanner) markSymbolsUnrenamable() {
	scope := s.result.Scopes.Module
	if scope == nil {
		return
	}
	for _, member := range scope.Members {
		s.result.Symbols.Get(member.Ref).MustNotBeRenamed = true
	}
	for _, ref := range scope.Generated {
		s.result.Symbols.Get(ref).MustNotBeRenamed = true
	}
}

func (s *AstScanner) addError(r logger.Range, text string) {
	s.result.Errors = append(s.result.Errors, logger.Msg{
		Kind:     logger.Error,
		Text:     text,
		Location: logger.LocationForRange(s.source, r),
	})
}

func (s *AstScanner) addWarning(r logger.Range, text string) {
	s.result.Warnings = append(s.result.Warnings, logger.Msg{
		Kind:     logger.Warning,
		Text:     text,
		Location: logger.LocationForRange(s.source, r),
	})
}
