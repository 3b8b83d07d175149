package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inlet/internal/cache"
	"inlet/internal/config"
	"inlet/internal/js_ast"
	"inlet/internal/logger"
	"inlet/internal/resolver"
)

// Builds the pre-bound tree the parser front-end would hand over for a
// module at the given graph index.
type treeBuilder struct {
	index uint32
	tree  js_ast.AST
}

func newTreeBuilder(index uint32) *treeBuilder {
	return &treeBuilder{
		index: index,
		tree: js_ast.AST{
			ModuleScope: &js_ast.Scope{
				Kind:    js_ast.ScopeModule,
				Members: make(map[string]js_ast.ScopeMember),
			},
		},
	}
}

func (b *treeBuilder) symbol(kind js_ast.SymbolKind, name string) js_ast.Ref {
	ref := js_ast.Ref{OuterIndex: b.index, InnerIndex: uint32(len(b.tree.Symbols))}
	b.tree.Symbols = append(b.tree.Symbols, js_ast.Symbol{
		OriginalName: name,
		Kind:         kind,
		Link:         js_ast.InvalidRef,
	})
	if kind != js_ast.SymbolUnbound {
		b.tree.ModuleScope.Members[name] = js_ast.ScopeMember{Ref: ref}
	}
	return ref
}

func (b *treeBuilder) stmt(data js_ast.S) *treeBuilder {
	b.tree.Stmts = append(b.tree.Stmts, js_ast.Stmt{Data: data})
	return b
}

// An "sideEffect()" call statement that static analysis must keep
func (b *treeBuilder) effectfulStmt() *treeBuilder {
	ref := b.symbol(js_ast.SymbolUnbound, "sideEffect")
	return b.stmt(&js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
		Target: js_ast.Expr{Data: &js_ast.EIdentifier{Ref: ref}},
	}}})
}

// An "export const name = 1" statement with no side effects
func (b *treeBuilder) pureExportStmt(name string) *treeBuilder {
	ref := b.symbol(js_ast.SymbolConst, name)
	value := js_ast.Expr{Data: &js_ast.ENumber{Value: 1}}
	return b.stmt(&js_ast.SLocal{
		Kind:     js_ast.LocalConst,
		IsExport: true,
		Decls: []js_ast.Decl{{
			Binding: js_ast.Binding{Data: &js_ast.BIdentifier{Ref: ref}},
			Value:   &value,
		}},
	})
}

func (b *treeBuilder) input(path string) ModuleInput {
	return ModuleInput{
		Index: b.index,
		Resolved: resolver.ResolvedID{
			Path: logger.Path{Text: path, Namespace: "file"},
		},
		ModuleType: config.ModuleJS,
		Tree:       &b.tree,
	}
}

func testOptions() *config.Options {
	return &config.Options{
		Cwd:       "/project",
		Treeshake: config.TreeshakeOptions{Enabled: true},
	}
}

func testContext(log logger.Log) CreateModuleContext {
	return CreateModuleContext{
		Log:     log,
		Options: testOptions(),
		Caches:  cache.MakePackageJSONCache(),
	}
}

func TestCreateModuleViewAssemblesView(t *testing.T) {
	b := newTreeBuilder(0)
	b.pureExportStmt("answer").effectfulStmt()
	input := b.input("/project/src/entry.js")

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.NoError(t, err)
	require.False(t, log.HasErrors())

	view := result.View
	assert.Equal(t, "src/entry.js", view.StableID)
	assert.Equal(t, "src/entry.js", view.Source.PrettyPath)
	assert.Equal(t, "entry", view.Source.IdentifierName)
	assert.Equal(t, uint32(0), view.Source.Index)

	require.Len(t, view.NamedExports, 1)
	assert.Equal(t, "answer", view.NamedExports[0].Alias)
	require.Len(t, view.StmtInfos, 2)
	assert.False(t, view.StmtInfos[0].SideEffect)
	assert.True(t, view.StmtInfos[1].SideEffect)

	assert.Equal(t, js_ast.ExportsESM, view.ExportsKind)
	assert.True(t, view.SideEffects.IsAnalyzed())
	assert.True(t, view.SideEffects.HasSideEffects())
	assert.False(t, view.Meta.Has(MetaIncluded), "inclusion is decided later, never at construction")

	assert.Same(t, input.Tree, result.AST)
	assert.Equal(t, uint32(0), result.Symbols.OuterIndex)
	assert.NotEqual(t, js_ast.InvalidRef, view.NamespaceObjectRef)
	assert.Equal(t, "entry_ns", result.Symbols.Get(view.NamespaceObjectRef).OriginalName)

	// The adapted scope tree rides on the view for later binding queries
	assert.Same(t, input.Tree.ModuleScope, view.Scopes.Module)
	ref, ok := view.Scopes.Lookup(view.Scopes.Module, "answer")
	require.True(t, ok)
	assert.Equal(t, "answer", result.Symbols.Get(ref).OriginalName)
}

func TestCreateModuleViewAttachesSourcemapChain(t *testing.T) {
	b := newTreeBuilder(0)
	b.pureExportStmt("x")
	input := b.input("/project/src/entry.js")
	chain := [][]byte{
		[]byte(`{"version":3,"mappings":"AAAA"}`),
		[]byte(`{"version":3,"mappings":"CCCC"}`),
	}
	input.SourcemapChain = chain

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.NoError(t, err)

	// Attached verbatim: same entries, same order, never inspected or copied
	require.Len(t, result.View.SourcemapChain, 2)
	assert.Equal(t, chain, result.View.SourcemapChain)
	for i := range chain {
		assert.Same(t, &chain[i][0], &result.View.SourcemapChain[i][0])
	}
}

func TestCreateModuleViewFailFast(t *testing.T) {
	b := newTreeBuilder(0)
	b.pureExportStmt("dup")
	b.pureExportStmt("dup")
	input := b.input("/project/src/entry.js")

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Multiple exports with the same name "dup"`)
	assert.True(t, log.HasErrors())
	assert.Empty(t, result.View.StableID, "a failed construction leaves no partial view")
	assert.Nil(t, result.View.NamedExports)
}

func TestCreateModuleViewManifestOverridesAnalysis(t *testing.T) {
	manifest := parseManifest(t, "/project/node_modules/pkg/package.json",
		`{"sideEffects": ["*.css"]}`)

	b := newTreeBuilder(0)
	b.effectfulStmt()
	input := b.input("/project/node_modules/pkg/lib/index.js")
	input.Resolved.PackageJSON = manifest

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.NoError(t, err)

	// "lib/index.js" is not listed, so the package declares it pure even
	// though the body has an effectful call
	assert.True(t, result.View.SideEffects.IsUserDefined())
	assert.False(t, result.View.SideEffects.HasSideEffects())
}

func TestCreateModuleViewParsesManifestThroughCache(t *testing.T) {
	manifestSource := &logger.Source{
		KeyPath:    logger.Path{Text: "/project/node_modules/pkg/package.json", Namespace: "file"},
		PrettyPath: "node_modules/pkg/package.json",
		Contents:   `{"sideEffects": false}`,
	}

	log := logger.NewDeferLog()
	c := testContext(log)
	for index := uint32(0); index < 2; index++ {
		b := newTreeBuilder(index)
		b.effectfulStmt()
		input := b.input("/project/node_modules/pkg/lib/index.js")
		input.Manifest = manifestSource

		result, err := CreateModuleView(c, input)
		require.NoError(t, err)
		assert.True(t, result.View.SideEffects.IsUserDefined())
		assert.False(t, result.View.SideEffects.HasSideEffects())
	}
}

func TestCreateModuleViewCSSAlwaysHasEffects(t *testing.T) {
	b := newTreeBuilder(0)
	input := b.input("/project/src/style.css")
	input.ModuleType = config.ModuleCSS
	input.HookSideEffects = HookSideEffectsFalse

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.NoError(t, err)
	assert.True(t, result.View.SideEffects.IsAnalyzed())
	assert.True(t, result.View.SideEffects.HasSideEffects())
}

func TestCreateModuleViewGlobalNoTreeshake(t *testing.T) {
	b := newTreeBuilder(0)
	b.pureExportStmt("x")
	input := b.input("/project/src/entry.js")

	options := testOptions()
	options.Treeshake.Enabled = false

	log := logger.NewDeferLog()
	result, err := CreateModuleView(CreateModuleContext{Log: log, Options: options}, input)
	require.NoError(t, err)
	assert.True(t, result.View.SideEffects.IsNoTreeshake())
}

func TestCreateModuleViewMetaFlags(t *testing.T) {
	b := newTreeBuilder(0)
	b.stmt(&js_ast.SExportStar{
		NamespaceRef: b.symbol(js_ast.SymbolOther, "export_star_dep"),
		Path:         js_ast.ImportPath{Text: "dep"},
	})
	evalRef := b.symbol(js_ast.SymbolUnbound, "eval")
	b.stmt(&js_ast.SExpr{Value: js_ast.Expr{Data: &js_ast.ECall{
		Target:       js_ast.Expr{Data: &js_ast.EIdentifier{Ref: evalRef}},
		IsDirectEval: true,
	}}})
	b.tree.HasLazyExport = true
	input := b.input("/project/src/entry.js")

	log := logger.NewDeferLog()
	result, err := CreateModuleView(testContext(log), input)
	require.NoError(t, err)

	meta := result.View.Meta
	assert.True(t, meta.Has(MetaHasStarExports))
	assert.True(t, meta.Has(MetaHasEval))
	assert.True(t, meta.Has(MetaHasLazyExport))
	assert.False(t, meta.Has(MetaIncluded))

	// The eval warning ends up in the shared log
	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Warning, msgs[0].Kind)
}

func TestStableIDVirtualNamespace(t *testing.T) {
	assert.Equal(t, "virtual:runtime", stableID("/project", logger.Path{
		Text:      "virtual:runtime",
		Namespace: "virtual",
	}))
	assert.Equal(t, "src/entry.js", stableID("/project", logger.Path{
		Text:      "/project/src/entry.js",
		Namespace: "file",
	}))
}
