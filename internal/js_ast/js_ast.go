package js_ast

import (
	"inlet/internal/logger"
)

// Every module (i.e. file) is parsed into a separate AST data structure by
// the front-end. The front-end also resolves all scopes and binds all symbols
// in the tree.
//
// Identifiers in the tree are referenced by a Ref, which is a pointer into the
// symbol table for the module. The symbol table is stored as a top-level field
// in the AST so it can be accessed without traversing the tree. For example,
// a renaming pass can iterate over the symbol table without touching the tree.
//
// The tree and its tables are exclusively owned by the module being ingested.
// On success, ownership transfers into the finished module view; nothing else
// may observe them mid-construction.

// Modules are processed in parallel for speed. We want to allow each worker
// to generate symbol IDs that won't conflict with each other. We also want to
// be able to quickly merge symbol tables from all modules into one.
//
// We can accomplish both goals by giving each symbol ID two parts: an outer
// index that is the owning module's index in the module graph, and an inner
// index that increments as the module mints new symbol IDs. A combined symbol
// map is then an array of arrays indexed first by outer index, then by inner
// index, and can be assembled by slotting each module's inner array into
// place without copying or renumbering.
type Ref struct {
	OuterIndex uint32
	InnerIndex uint32
}

var InvalidRef = Ref{^uint32(0), ^uint32(0)}

type LocRef struct {
	Loc logger.Loc
	Ref Ref
}

type Comment struct {
	Loc  logger.Loc
	Text string
}

type OpCode uint8

// Only the operators the ingestion stage cares about are distinguished here.
// Everything else is conservatively treated as an effectful expression by the
// side-effect analysis anyway.
const (
	UnOpNot OpCode = iota
	UnOpVoid
	UnOpTypeof
	UnOpDelete
	UnOpPreDec
	UnOpPreInc
	UnOpPostDec
	UnOpPostInc

	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpLooseEq
	BinOpStrictEq
	BinOpLogicalOr
	BinOpLogicalAnd
	BinOpNullishCoalescing
	BinOpComma
	BinOpAssign
	BinOpAddAssign
	BinOpLogicalOrAssign
)

type PropertyKind uint8

const (
	PropertyNormal PropertyKind = iota
	PropertyGet
	PropertySet
	PropertySpread
)

type Property struct {
	Key Expr

	// This is omitted for class fields
	Value *Expr

	// This is used when parsing a pattern that uses default values, and for
	// class fields: "class Foo { a = 1 }"
	Initializer *Expr

	Kind       PropertyKind
	IsComputed bool
	IsMethod   bool
	IsStatic   bool
}

type PropertyBinding struct {
	IsComputed   bool
	IsSpread     bool
	Key          Expr
	Value        Binding
	DefaultValue *Expr
}

type Arg struct {
	Binding Binding
	Default *Expr
}

type Fn struct {
	Name *LocRef
	Args []Arg
	Body FnBody

	IsAsync     bool
	IsGenerator bool
	HasRestArg  bool
}

type FnBody struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type Class struct {
	Name       *LocRef
	Extends    *Expr
	BodyLoc    logger.Loc
	Properties []Property
}

type ArrayBinding struct {
	Binding      Binding
	DefaultValue *Expr
}

type Binding struct {
	Loc  logger.Loc
	Data B
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type B interface{ isBinding() }

type BMissing struct{}

type BIdentifier struct{ Ref Ref }

type BArray struct {
	Items     []ArrayBinding
	HasSpread bool
}

type BObject struct {
	Properties []PropertyBinding
}

func (*BMissing) isBinding()    {}
func (*BIdentifier) isBinding() {}
func (*BArray) isBinding()      {}
func (*BObject) isBinding()     {}

type Expr struct {
	Loc  logger.Loc
	Data E
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type E interface{ isExpr() }

type EArray struct {
	Items []Expr
}

type EUnary struct {
	Op    OpCode
	Value Expr
}

type EBinary struct {
	Op    OpCode
	Left  Expr
	Right Expr
}

type EBoolean struct{ Value bool }

type ENull struct{}

type EUndefined struct{}

type EThis struct{}

type ENew struct {
	Target Expr
	Args   []Expr

	// True if there is a comment containing "@__PURE__" or "#__PURE__"
	// preceding this expression. See the comment inside ECall for details.
	CanBeUnwrappedIfUnused bool
}

type EImportMeta struct{}

type OptionalChain uint8

const (
	// "a.b"
	OptionalChainNone OptionalChain = iota

	// "a?.b"
	OptionalChainStart

	// "a?.b.c" => ".c" is OptionalChainContinue
	OptionalChainContinue
)

type ECall struct {
	Target        Expr
	Args          []Expr
	OptionalChain OptionalChain
	IsDirectEval  bool

	// True if there is a comment containing "@__PURE__" or "#__PURE__"
	// preceding this call expression. This is an annotation used for tree
	// shaking, and means that the call can be removed if its result is unused.
	// It does not mean the call is pure (e.g. it may still return something
	// different if called twice).
	//
	// Note that the arguments are not considered to be part of the call. If
	// the call itself is removed due to this annotation, the arguments must
	// remain if they have side effects.
	CanBeUnwrappedIfUnused bool
}

type EDot struct {
	Target        Expr
	Name          string
	NameLoc       logger.Loc
	OptionalChain OptionalChain

	// If true, this property access is known to be free of side-effects. That
	// means it can be removed if the resulting value isn't used.
	CanBeRemovedIfUnused bool
}

type EIndex struct {
	Target        Expr
	Index         Expr
	OptionalChain OptionalChain
}

type EArrow struct {
	Args []Arg
	Body FnBody

	IsAsync    bool
	HasRestArg bool
}

type EFunction struct{ Fn Fn }

type EClass struct{ Class Class }

type EIdentifier struct {
	Ref Ref

	// If true, this identifier is known to not have a side effect (i.e. to not
	// throw an exception) when referenced. If false, this identifier may or
	// may not have side effects when referenced. This is used to allow the
	// removal of known globals such as "Object" if they aren't used.
	CanBeRemovedIfUnused bool
}

// This is similar to an EIdentifier but it represents a reference to an ES6
// import item. It's stored as a separate type so passes that rewrite plain
// identifiers must opt in to handling import items, which may turn into
// property accesses off a namespace object after linking.
type EImportIdentifier struct {
	Ref Ref
}

type EMissing struct{}

type ENumber struct{ Value float64 }

type EBigInt struct{ Value string }

type EObject struct {
	Properties []Property
}

type ESpread struct{ Value Expr }

type EString struct {
	Value string
}

type TemplatePart struct {
	Value   Expr
	TailLoc logger.Loc
	Tail    string
}

type ETemplate struct {
	Tag   *Expr
	Head  string
	Parts []TemplatePart
}

type ERegExp struct{ Value string }

type EAwait struct {
	Value Expr
}

type EYield struct {
	Value  *Expr
	IsStar bool
}

type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

// The specifier of an import-like construct. The scanner turns these into
// import records; the front-end only carries the raw text and its location.
type ImportPath struct {
	Text  string
	Range logger.Range
}

type ERequire struct {
	Path ImportPath
}

// A dynamic "import(...)" expression. The path text is empty when the
// argument is not a string literal, in which case the target can only be
// resolved at run-time and no import record is minted.
type EImport struct {
	Expr Expr
	Path ImportPath
}

func (*EArray) isExpr()            {}
func (*EUnary) isExpr()            {}
func (*EBinary) isExpr()           {}
func (*EBoolean) isExpr()          {}
func (*ENull) isExpr()             {}
func (*EUndefined) isExpr()        {}
func (*EThis) isExpr()             {}
func (*ENew) isExpr()              {}
func (*EImportMeta) isExpr()       {}
func (*ECall) isExpr()             {}
func (*EDot) isExpr()              {}
func (*EIndex) isExpr()            {}
func (*EArrow) isExpr()            {}
func (*EFunction) isExpr()         {}
func (*EClass) isExpr()            {}
func (*EIdentifier) isExpr()       {}
func (*EImportIdentifier) isExpr() {}
func (*EMissing) isExpr()          {}
func (*ENumber) isExpr()           {}
func (*EBigInt) isExpr()           {}
func (*EObject) isExpr()           {}
func (*ESpread) isExpr()           {}
func (*EString) isExpr()           {}
func (*ETemplate) isExpr()         {}
func (*ERegExp) isExpr()           {}
func (*EAwait) isExpr()            {}
func (*EYield) isExpr()            {}
func (*EIf) isExpr()               {}
func (*ERequire) isExpr()          {}
func (*EImport) isExpr()           {}

type ExprOrStmt struct {
	Expr *Expr
	Stmt *Stmt
}

type Stmt struct {
	Loc  logger.Loc
	Data S
}

// This interface is never called. Its purpose is to encode a variant type in
// Go's type system.
type S interface{ isStmt() }

type SBlock struct {
	Stmts []Stmt
}

type SEmpty struct{}

type SDebugger struct{}

type SDirective struct {
	Value string
}

type SExportClause struct {
	Items []ClauseItem
}

type SExportFrom struct {
	Items        []ClauseItem
	NamespaceRef Ref
	Path         ImportPath
}

type SExportDefault struct {
	DefaultName LocRef
	Value       ExprOrStmt // May be a SFunction or SClass
}

type ExportStarAlias struct {
	Loc  logger.Loc
	Name string
}

type SExportStar struct {
	NamespaceRef Ref
	Alias        *ExportStarAlias
	Path         ImportPath
}

// The decision of whether to export an expression using "module.exports" or
// "export default" is deferred until linking using this statement kind
type SLazyExport struct {
	Value Expr
}

type SExpr struct {
	Value Expr
}

type SFunction struct {
	Fn       Fn
	IsExport bool
}

type SClass struct {
	Class    Class
	IsExport bool
}

type SLabel struct {
	Name LocRef
	Stmt Stmt
}

type SIf struct {
	Test Expr
	Yes  Stmt
	No   *Stmt
}

type SFor struct {
	Init   *Stmt // May be a SConst, SLet, SVar, or SExpr
	Test   *Expr
	Update *Expr
	Body   Stmt
}

type SForIn struct {
	Init  Stmt
	Value Expr
	Body  Stmt
}

type SForOf struct {
	IsAwait bool
	Init    Stmt
	Value   Expr
	Body    Stmt
}

type SDoWhile struct {
	Body Stmt
	Test Expr
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type Catch struct {
	Loc     logger.Loc
	Binding *Binding
	Body    []Stmt
}

type Finally struct {
	Loc   logger.Loc
	Stmts []Stmt
}

type STry struct {
	Body    []Stmt
	Catch   *Catch
	Finally *Finally
}

type Case struct {
	Value *Expr
	Body  []Stmt
}

type SSwitch struct {
	Test  Expr
	Cases []Case
}

// This object represents all of these types of import statements:
//
//	import 'path'
//	import {item1, item2} from 'path'
//	import * as ns from 'path'
//	import defaultItem, {item1, item2} from 'path'
//	import defaultItem, * as ns from 'path'
//
// Many parts are optional and can be combined in different ways. The only
// restriction is that you cannot have both a clause and a star namespace.
type SImport struct {
	// If this is a star import: This is a Ref for the namespace symbol. The
	// Loc for the symbol is StarLoc.
	//
	// Otherwise: This is an auto-generated Ref for the namespace representing
	// the imported file. In this case StarLoc is nil.
	NamespaceRef Ref

	DefaultName *LocRef
	Items       *[]ClauseItem
	StarNameLoc *logger.Loc
	Path        ImportPath
}

type SReturn struct {
	Value *Expr
}

type SThrow struct {
	Value Expr
}

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

type SLocal struct {
	Decls    []Decl
	Kind     LocalKind
	IsExport bool
}

type SBreak struct {
	Label *LocRef
}

type SContinue struct {
	Label *LocRef
}

func (*SBlock) isStmt()         {}
func (*SDebugger) isStmt()      {}
func (*SDirective) isStmt()     {}
func (*SEmpty) isStmt()         {}
func (*SExportClause) isStmt()  {}
func (*SExportFrom) isStmt()    {}
func (*SExportDefault) isStmt() {}
func (*SExportStar) isStmt()    {}
func (*SLazyExport) isStmt()    {}
func (*SExpr) isStmt()          {}
func (*SFunction) isStmt()      {}
func (*SClass) isStmt()         {}
func (*SLabel) isStmt()         {}
func (*SIf) isStmt()            {}
func (*SFor) isStmt()           {}
func (*SForIn) isStmt()         {}
func (*SForOf) isStmt()         {}
func (*SDoWhile) isStmt()       {}
func (*SWhile) isStmt()         {}
func (*STry) isStmt()           {}
func (*SSwitch) isStmt()        {}
func (*SImport) isStmt()        {}
func (*SReturn) isStmt()        {}
func (*SThrow) isStmt()         {}
func (*SLocal) isStmt()         {}
func (*SBreak) isStmt()         {}
func (*SContinue) isStmt()      {}

type ClauseItem struct {
	Alias    string
	AliasLoc logger.Loc
	Name     LocRef

	// This is needed for "export {foo as bar} from 'path'" statements. This
	// case is a re-export and "foo" and "bar" are both aliases. We need to
	// preserve both aliases in case the symbol is renamed.
	OriginalName string
}

type Decl struct {
	Binding Binding
	Value   *Expr
}

type SymbolKind uint8

const (
	// An unbound symbol is one that isn't declared in the file it's referenced
	// in. For example, using "window" without declaring it will be unbound.
	SymbolUnbound SymbolKind = iota

	// Hoisted symbols can be re-declared in the same scope and are hoisted to
	// the closest containing function or module scope: function arguments,
	// function statements, and "var" variables.
	SymbolHoisted
	SymbolHoistedFunction

	// Generator and async functions are not hoisted, but still have special
	// properties such as being able to overwrite previous functions with the
	// same name.
	SymbolGeneratorOrAsyncFunction

	SymbolClass

	// Assigning to a "const" symbol will throw a TypeError at runtime
	SymbolConst

	// An ES6 import binding
	SymbolImport

	// Labels are in their own namespace
	SymbolLabel

	// This annotates all other symbols that don't have special behavior.
	SymbolOther
)

func (kind SymbolKind) IsHoisted() bool {
	return kind == SymbolHoisted || kind == SymbolHoistedFunction
}

type Symbol struct {
	// This is the name that came from the front-end. Printed names may be
	// renamed during minification or to avoid name collisions. Do not use the
	// original name during printing.
	OriginalName string

	// Symbols that have been merged form a linked-list where the last link is
	// the symbol to use. This link is an invalid ref if it's the last link.
	Link Ref

	// An estimate of the number of uses of this symbol. This is an estimate
	// and may not be completely accurate, but it should always be non-zero
	// when the symbol is used.
	UseCountEstimate uint32

	Kind SymbolKind

	// Certain symbols must not be renamed or minified. For example, any
	// identifier used inside a scope containing a direct "eval" call.
	MustNotBeRenamed bool
}

type ExportsKind uint8

const (
	// The module has no exports of any kind
	ExportsNone ExportsKind = iota

	// The module uses ES module import/export syntax
	ExportsESM

	// The module assigns to "exports" or "module.exports"
	ExportsCommonJS
)

type ScopeKind uint8

const (
	ScopeBlock ScopeKind = iota
	ScopeWith
	ScopeLabel
	ScopeClassName
	ScopeClassBody

	// The scopes below stop hoisted variables from extending into parent scopes
	ScopeModule
	ScopeFunctionArgs
	ScopeFunctionBody
)

func (kind ScopeKind) StopsHoisting() bool {
	return kind >= ScopeModule
}

type ScopeMember struct {
	Ref Ref
	Loc logger.Loc
}

type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Members  map[string]ScopeMember

	// Refs minted for synthetic bindings that live in this scope
	Generated []Ref

	// If a scope contains a direct eval() expression, then none of the symbols
	// inside that scope can be renamed. We conservatively assume that the
	// evaluated code might reference anything that it has access to.
	ContainsDirectEval bool
}

// One entry per "import {x}"/"import x"/"import * as x" binding and per
// re-export clause item. Slice order is source order, which is significant
// for deterministic output.
type NamedImport struct {
	// Name used in the source module ("default" and "*" are special)
	Alias    string
	AliasLoc logger.Loc

	// The local binding in this module
	ImportedAs Ref

	// Index into the module's import record list
	ImportRecordIndex uint32

	// True for "export {x} from 'path'" items, which are both an import and
	// an export
	IsExported bool
}

// One entry per exported name, in source order.
type NamedExport struct {
	Alias    string
	AliasLoc logger.Loc

	// The local symbol the exported name binds. For re-exports this is the
	// binding minted by the matching NamedImport.
	Ref Ref
}

// This is the module-ingestion output contract of the parser front-end. The
// front-end binds all identifiers before handing the tree over, so the
// Symbols slice and the scope tree arrive fully populated. The front-end is
// told the module's graph index up front and mints every Ref in the tree
// with that outer index; the scanner's adapter wraps the raw slice into a
// SymbolTable and verifies the invariant.
type AST struct {
	Stmts       []Stmt
	Symbols     []Symbol
	ModuleScope *Scope
	Comments    []Comment

	// Set when the front-end deferred the decision of how to expose a value
	// (e.g. for JSON sources) until linking
	HasLazyExport bool

	Hashbang  string
	Directive string
}

// Symbols for one module. OuterIndex is the owning module's index in the
// module graph, so every Ref minted here is globally addressable without
// consulting the module's private tables.
type SymbolTable struct {
	OuterIndex uint32
	Symbols    []Symbol
}

func NewSymbolTable(outerIndex uint32, symbols []Symbol) SymbolTable {
	return SymbolTable{OuterIndex: outerIndex, Symbols: symbols}
}

// The ref must have been minted by this module.
func (st *SymbolTable) Get(ref Ref) *Symbol {
	if ref.OuterIndex != st.OuterIndex {
		panic("Internal error: symbol ref from another module")
	}
	return &st.Symbols[ref.InnerIndex]
}

func (st *SymbolTable) CreateSymbol(kind SymbolKind, originalName string) Ref {
	ref := Ref{OuterIndex: st.OuterIndex, InnerIndex: uint32(len(st.Symbols))}
	st.Symbols = append(st.Symbols, Symbol{
		OriginalName: originalName,
		Kind:         kind,
		Link:         InvalidRef,
	})
	return ref
}

// The combined symbol tables of every module in a graph. This could be
// represented as a "map[Ref]Symbol" but a two-level array is more efficient
// and makes it trivial to merge per-module tables: each module only generates
// symbols in a single inner array, so the maps are joined by slotting every
// inner array into one outer array. See the comment on "Ref".
type SymbolMap struct {
	Outer [][]Symbol
}

func NewSymbolMap(moduleCount int) SymbolMap {
	return SymbolMap{make([][]Symbol, moduleCount)}
}

func (sm SymbolMap) Get(ref Ref) *Symbol {
	return &sm.Outer[ref.OuterIndex][ref.InnerIndex]
}

// Installs one module's table into the combined map.
func (sm SymbolMap) Set(table SymbolTable) {
	sm.Outer[table.OuterIndex] = table.Symbols
}
