package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inlet/internal/js_ast"
)

func TestMakeScopesAndSymbols(t *testing.T) {
	tree := js_ast.AST{
		Symbols: []js_ast.Symbol{
			{OriginalName: "a", Kind: js_ast.SymbolConst},
			{OriginalName: "b", Kind: js_ast.SymbolHoisted},
		},
		ModuleScope: &js_ast.Scope{
			Kind:    js_ast.ScopeModule,
			Members: make(map[string]js_ast.ScopeMember),
		},
	}

	symbols, scopes := MakeScopesAndSymbols(3, &tree)
	assert.Equal(t, uint32(3), symbols.OuterIndex)
	assert.Same(t, tree.ModuleScope, scopes.Module)

	// Links are normalized so the zero value is never mistaken for a real ref
	for i := range symbols.Symbols {
		assert.Equal(t, js_ast.InvalidRef, symbols.Symbols[i].Link)
	}

	ref := js_ast.Ref{OuterIndex: 3, InnerIndex: 1}
	assert.Equal(t, "b", symbols.Get(ref).OriginalName)
}

func TestAstScopesQueries(t *testing.T) {
	module := &js_ast.Scope{
		Kind: js_ast.ScopeModule,
		Members: map[string]js_ast.ScopeMember{
			"outer": {Ref: js_ast.Ref{InnerIndex: 0}},
		},
	}
	body := &js_ast.Scope{
		Kind:   js_ast.ScopeFunctionBody,
		Parent: module,
		Members: map[string]js_ast.ScopeMember{
			"inner": {Ref: js_ast.Ref{InnerIndex: 1}},
		},
	}
	module.Children = append(module.Children, body)
	scopes := AstScopes{Module: module}

	assert.True(t, scopes.Binds(body, "inner"))
	assert.False(t, scopes.Binds(body, "outer"), "Binds ignores parent scopes")

	ref, ok := scopes.Lookup(body, "outer")
	require.True(t, ok)
	assert.Equal(t, uint32(0), ref.InnerIndex)

	_, ok = scopes.Lookup(body, "missing")
	assert.False(t, ok)
}
