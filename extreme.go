package treematcher

import "github.com/dPliakos/treematcher/tree"

// selectExtreme folds the structural matches into the single best one. The
// first candidate is the initial best; a later candidate replaces it when
// the selector holds with @ bound to the candidate and all_nodes to the
// current best.
func (vm *VM) selectExtreme(sel *QueryNode, candidates []tree.Node) (tree.Node, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	best := candidates[0]
	for _, c := range candidates {
		ok, err := evaluate(sel.Extreme, sel.ExtremeSource, c, vm.syntax, vm.lookup, map[string]any{"all_nodes": best})
		if err != nil {
			return nil, err
		}
		if ok {
			best = c
		}
	}
	return best, nil
}

// extremeNode returns the selector node of the query, if any.
func extremeNode(q *QueryNode) *QueryNode {
	var sel *QueryNode
	q.walk(func(n *QueryNode, _ int) {
		if n.Extreme != nil && sel == nil {
			sel = n
		}
	}, 0)
	return sel
}
