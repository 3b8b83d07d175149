package js_ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSymbols(kinds ...SymbolKind) *SymbolTable {
	table := NewSymbolTable(0, nil)
	for i, kind := range kinds {
		table.CreateSymbol(kind, string(rune('a'+i)))
	}
	return &table
}

func ident(table *SymbolTable, inner uint32) Expr {
	return Expr{Data: &EIdentifier{Ref: Ref{OuterIndex: table.OuterIndex, InnerIndex: inner}}}
}

func TestExprCanBeRemovedIfUnused(t *testing.T) {
	symbols := testSymbols(SymbolHoisted, SymbolUnbound)

	removable := []Expr{
		{Data: &ENull{}},
		{Data: &EUndefined{}},
		{Data: &EBoolean{Value: true}},
		{Data: &ENumber{Value: 1}},
		{Data: &EString{Value: "x"}},
		{Data: &ERegExp{Value: "/x/"}},
		{Data: &EFunction{}},
		{Data: &EArrow{}},
		{Data: &EImportMeta{}},
		ident(symbols, 0), // bound identifier
		{Data: &EArray{Items: []Expr{{Data: &ENumber{Value: 1}}}}},
		{Data: &EObject{Properties: []Property{{Key: Expr{Data: &EString{Value: "a"}}, Value: &Expr{Data: &ENumber{Value: 1}}}}}},
		{Data: &ECall{CanBeUnwrappedIfUnused: true, Args: []Expr{{Data: &ENumber{Value: 1}}}}},
		{Data: &ENew{CanBeUnwrappedIfUnused: true}},
		{Data: &EIf{Test: Expr{Data: &EBoolean{}}, Yes: Expr{Data: &ENumber{}}, No: Expr{Data: &ENull{}}}},
	}
	for _, expr := range removable {
		assert.True(t, ExprCanBeRemovedIfUnused(expr, symbols), "%T", expr.Data)
	}

	effectful := []Expr{
		ident(symbols, 1), // unbound identifier may throw
		{Data: &ECall{Target: ident(symbols, 0)}},
		{Data: &ENew{Target: ident(symbols, 0)}},
		{Data: &EAwait{Value: Expr{Data: &ENumber{}}}},
		{Data: &EBinary{Op: BinOpAssign, Left: ident(symbols, 0), Right: Expr{Data: &ENumber{}}}},
		{Data: &EUnary{Op: UnOpDelete, Value: ident(symbols, 0)}},
		{Data: &EObject{Properties: []Property{{Kind: PropertySpread, Key: ident(symbols, 0)}}}},
		{Data: &EArray{Items: []Expr{{Data: &ECall{Target: ident(symbols, 0)}}}}},
		{Data: &EImport{Expr: Expr{Data: &EString{Value: "x"}}}},
	}
	for _, expr := range effectful {
		assert.False(t, ExprCanBeRemovedIfUnused(expr, symbols), "%T", expr.Data)
	}
}

func TestStmtCanBeRemovedIfUnused(t *testing.T) {
	symbols := testSymbols(SymbolHoisted, SymbolUnbound)

	pureDecl := Stmt{Data: &SLocal{Kind: LocalConst, Decls: []Decl{{
		Binding: Binding{Data: &BIdentifier{Ref: Ref{InnerIndex: 0}}},
		Value:   &Expr{Data: &ENumber{Value: 1}},
	}}}}
	assert.True(t, StmtCanBeRemovedIfUnused(pureDecl, symbols))

	callDecl := Stmt{Data: &SLocal{Kind: LocalConst, Decls: []Decl{{
		Binding: Binding{Data: &BIdentifier{Ref: Ref{InnerIndex: 0}}},
		Value:   &Expr{Data: &ECall{Target: ident(symbols, 1)}},
	}}}}
	assert.False(t, StmtCanBeRemovedIfUnused(callDecl, symbols))

	assert.True(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SFunction{}}, symbols))
	assert.True(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SEmpty{}}, symbols))
	assert.True(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SImport{}}, symbols))
	assert.True(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SExportClause{}}, symbols))

	assert.False(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SExpr{Value: Expr{Data: &ECall{Target: ident(symbols, 0)}}}}, symbols))
	assert.False(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SThrow{Value: Expr{Data: &ENumber{}}}}, symbols))
	assert.False(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SIf{Test: Expr{Data: &EBoolean{}}, Yes: Stmt{Data: &SEmpty{}}}}, symbols))

	// A class whose static initializer calls something must be kept
	effectfulClass := Stmt{Data: &SClass{Class: Class{Properties: []Property{{
		IsStatic: true,
		Key:      Expr{Data: &EString{Value: "x"}},
		Value:    &Expr{Data: &ECall{Target: ident(symbols, 0)}},
	}}}}}
	assert.False(t, StmtCanBeRemovedIfUnused(effectfulClass, symbols))

	pureClass := Stmt{Data: &SClass{Class: Class{Properties: []Property{{
		Key:   Expr{Data: &EString{Value: "m"}},
		Value: &Expr{Data: &EFunction{}},
	}}}}}
	assert.True(t, StmtCanBeRemovedIfUnused(pureClass, symbols))

	// "export default" wraps an expression or declaration
	assert.True(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SExportDefault{
		Value: ExprOrStmt{Expr: &Expr{Data: &ENumber{Value: 1}}},
	}}, symbols))
	assert.False(t, StmtCanBeRemovedIfUnused(Stmt{Data: &SExportDefault{
		Value: ExprOrStmt{Expr: &Expr{Data: &ECall{Target: ident(symbols, 0)}}},
	}}, symbols))
}

func TestStmtsCanBeRemovedIfUnused(t *testing.T) {
	symbols := testSymbols(SymbolHoisted, SymbolUnbound)

	pure := []Stmt{
		{Data: &SImport{}},
		{Data: &SFunction{}},
		{Data: &SEmpty{}},
	}
	assert.True(t, StmtsCanBeRemovedIfUnused(pure, symbols))
	assert.True(t, StmtsCanBeRemovedIfUnused(nil, symbols))

	// One effectful statement taints the whole list
	mixed := append(pure, Stmt{Data: &SExpr{Value: Expr{Data: &ECall{Target: ident(symbols, 0)}}}})
	assert.False(t, StmtsCanBeRemovedIfUnused(mixed, symbols))
}

func TestSymbolKindIsHoisted(t *testing.T) {
	assert.True(t, SymbolHoisted.IsHoisted())
	assert.True(t, SymbolHoistedFunction.IsHoisted())
	assert.False(t, SymbolUnbound.IsHoisted())
	assert.False(t, SymbolConst.IsHoisted())
	assert.False(t, SymbolImport.IsHoisted())
}

func TestScopeKindStopsHoisting(t *testing.T) {
	assert.False(t, ScopeBlock.StopsHoisting())
	assert.False(t, ScopeWith.StopsHoisting())
	assert.False(t, ScopeClassBody.StopsHoisting())
	assert.True(t, ScopeModule.StopsHoisting())
	assert.True(t, ScopeFunctionArgs.StopsHoisting())
	assert.True(t, ScopeFunctionBody.StopsHoisting())
}

func TestSymbolTable(t *testing.T) {
	table := NewSymbolTable(7, nil)
	ref := table.CreateSymbol(SymbolOther, "ns")
	assert.Equal(t, uint32(7), ref.OuterIndex)
	assert.Equal(t, uint32(0), ref.InnerIndex)
	assert.Equal(t, "ns", table.Get(ref).OriginalName)
	assert.Equal(t, InvalidRef, table.Get(ref).Link)

	sm := NewSymbolMap(8)
	sm.Set(table)
	assert.Equal(t, "ns", sm.Get(ref).OriginalName)
}
