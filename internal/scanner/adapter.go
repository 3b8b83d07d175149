package scanner

import (
	"inlet/internal/js_ast"
)

// A thin wrapper over the front-end's lexical scope tree that answers the
// two queries later stages need: "which binding does this name resolve to
// from this scope" and "does this scope itself introduce the name". The
// wrapped tree is owned by the module being processed.
type AstScopes struct {
	Module *js_ast.Scope
}

// Reports whether the given scope itself introduces a binding for name,
// ignoring parent scopes.
func (s *AstScopes) Binds(scope *js_ast.Scope, name string) bool {
	_, ok := scope.Members[name]
	return ok
}

// Resolves a name starting at the given scope and walking parent scopes.
func (s *AstScopes) Lookup(scope *js_ast.Scope, name string) (js_ast.Ref, bool) {
	for scope != nil {
		if member, ok := scope.Members[name]; ok {
			return member.Ref, true
		}
		scope = scope.Parent
	}
	return js_ast.InvalidRef, false
}

// MakeScopesAndSymbols normalizes the front-end's raw symbol slice and scope
// tree into the bundler-local form. The symbol table is stamped with the
// owning module's graph index so every ref minted from here on is globally
// addressable. Purely structural; cannot fail.
func MakeScopesAndSymbols(moduleIndex uint32, tree *js_ast.AST) (js_ast.SymbolTable, AstScopes) {
	symbols := js_ast.NewSymbolTable(moduleIndex, tree.Symbols)

	// The front-end never merges symbols, so normalize every link to the
	// "end of list" sentinel instead of trusting the zero value, which is
	// indistinguishable from a real ref.
	for i := range symbols.Symbols {
		symbols.Symbols[i].Link = js_ast.InvalidRef
	}

	return symbols, AstScopes{Module: tree.ModuleScope}
}
