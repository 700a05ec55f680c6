package dux

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mesh-intelligence/dux/pkg/types"
)

// ExprPredicate compiles src, an expr-lang boolean expression, into a
// Predicate. The expression sees the list metadata as the variables
// filters, params, objects (the ids), count, page, ipp and total:
//
//	total > 0 && filters.active == true
//	count < ipp
func ExprPredicate(src string) (Predicate, error) {
	program, err := expr.Compile(src, expr.Env(listEnv(types.NewState().List)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile predicate %q: %w", src, err)
	}
	return func(list types.ListView) bool {
		return runPredicate(program, list)
	}, nil
}

func runPredicate(program *vm.Program, list types.ListView) bool {
	out, err := expr.Run(program, listEnv(list))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// listEnv exposes list metadata to expressions.
func listEnv(list types.ListView) map[string]any {
	ids := make([]string, len(list.Objects))
	for i, id := range list.Objects {
		ids[i] = string(id)
	}
	filters := list.Filters
	if filters == nil {
		filters = map[string]any{}
	}
	params := list.Params
	if params == nil {
		params = map[string]any{}
	}
	return map[string]any{
		"filters": filters,
		"params":  params,
		"objects": ids,
		"count":   len(ids),
		"page":    list.Page,
		"ipp":     list.IPP,
		"total":   list.Total,
	}
}
