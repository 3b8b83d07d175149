package graph

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"inlet/internal/js_ast"
)

// BuildViews constructs one view per input on a bounded pool of worker
// goroutines. Inputs must be ordered by module index (inputs[i].Index == i)
// so results and the symbol map slot deterministically regardless of
// completion order. The first construction error cancels the remaining work
// and is returned; the shared log is safe for concurrent use and collects
// warnings from every module that ran.
func BuildViews(
	ctx context.Context,
	c CreateModuleContext,
	inputs []ModuleInput,
) ([]CreateModuleViewResult, js_ast.SymbolMap, error) {
	for i := range inputs {
		if inputs[i].Index != uint32(i) {
			return nil, js_ast.SymbolMap{}, fmt.Errorf(
				"module input %d has graph index %d", i, inputs[i].Index)
		}
	}

	results := make([]CreateModuleViewResult, len(inputs))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i := range inputs {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := CreateModuleView(c, inputs[i])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, js_ast.SymbolMap{}, err
	}

	symbols := js_ast.NewSymbolMap(len(inputs))
	for i := range results {
		symbols.Set(results[i].Symbols)
	}
	return results, symbols, nil
}
