package treematcher

import (
	"log/slog"

	"github.com/dPliakos/treematcher/tree"
)

// maxSteps bounds the number of match calls spent on one candidate target
// node. Ordered assignment of children is exponential in the worst case.
const maxSteps = 10_000_000

type memoKey struct {
	q *QueryNode
	t tree.Node
}

// VM matches one cloned query against target nodes. The skip counters of
// the clone persist across all target nodes of one search.
type VM struct {
	root   *QueryNode
	syntax *Syntax
	lookup Lookup
	logger *slog.Logger
	memo   map[memoKey]bool
	steps  int
}

func NewVM(root *QueryNode, syntax *Syntax, lookup Lookup, logger *slog.Logger) *VM {
	if lookup == nil {
		lookup = uncached{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VM{
		root:   root.clone(nil),
		syntax: syntax,
		lookup: lookup,
		logger: logger,
		memo:   make(map[memoKey]bool),
	}
}

// Run reports whether the query can be rooted at t. Each call gets a fresh
// step budget.
func (vm *VM) Run(t tree.Node) (bool, error) {
	vm.steps = 0
	return vm.match(vm.root, t)
}

func (vm *VM) match(q *QueryNode, t tree.Node) (bool, error) {
	vm.steps++
	if vm.steps > maxSteps {
		return false, ErrStepLimit
	}

	// zero intermediate nodes: test the only child directly
	if q.Quant.DirectFirst && len(q.Children) == 1 {
		q = q.Children[0]
	}

	ok, err := vm.local(q, t)
	if err != nil {
		return false, err
	}
	if !ok {
		if q.Quant.Indirect && q.isLeaf() {
			return false, nil
		}
		p := q.Parent
		if p == nil || !p.Quant.Indirect || !p.Quant.inHigh(p.skipped+1) {
			return false, nil
		}
		// t is an intermediate node: let the parent skip it
		q = p
		q.skipped++
		ok = true
	} else if q.Quant.Indirect && q.skipped == 0 {
		q.skipped++
	}

	if len(q.Children) > 0 {
		if ok, err = vm.matchChildren(q, t); err != nil {
			return false, err
		}
	}

	if !ok && q.Quant.Indirect && q.skipped > 0 {
		q.skipped--
	}
	return ok, nil
}

// local evaluates anchors, predicate and negation of q against t alone.
func (vm *VM) local(q *QueryNode, t tree.Node) (bool, error) {
	key := memoKey{q, t}
	if v, ok := vm.memo[key]; ok {
		return v, nil
	}

	ok := (!q.Anchors.Root || tree.IsRoot(t)) && (!q.Anchors.Leaf || tree.IsLeaf(t))
	if ok && q.Predicate != nil {
		var err error
		ok, err = evaluate(q.Predicate, q.Source, t, vm.syntax, vm.lookup, nil)
		if err != nil {
			if q.Parent == nil || isFatal(err) {
				return false, err
			}
			vm.logger.Debug("predicate failed", "predicate", q.Source, "node", t.Name(), "err", err)
			vm.memo[key] = false
			return false, nil
		}
	}
	if q.Negate {
		ok = !ok
	}
	vm.memo[key] = ok
	return ok, nil
}

func (vm *VM) matchChildren(q *QueryNode, t tree.Node) (bool, error) {
	anchors := []tree.Node{t}
	if len(t.Children()) < len(q.Children) {
		if !q.Quant.Indirect {
			return false, nil
		}
		// skip down to the first node with enough children
		anchors = nil
		for d := range tree.Traverse(t, tree.LevelOrder) {
			if len(d.Children()) >= len(q.Children) {
				anchors = append([]tree.Node{d}, tree.Siblings(d)...)
				break
			}
		}
		if anchors == nil {
			return false, nil
		}
	}

	for _, a := range anchors {
		if len(a.Children()) < len(q.Children) {
			continue
		}
		ok, err := vm.assign(q, a)
		if err != nil || ok {
			return ok, err
		}
	}

	// re-anchor a multi-child indirect node one level deeper
	if q.Quant.Indirect && len(q.Children) > 1 && q.Quant.inHigh(q.skipped+1) {
		for _, c := range t.Children() {
			q.skipped++
			ok, err := vm.matchChildren(q, c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			q.skipped--
		}
	}
	return false, nil
}

// pairResult caches match(q.Children[i], kids[j]) within one assign call.
type pairResult int8

const (
	pairUnknown pairResult = iota
	pairNo
	pairYes
)

// assign searches injective, ordered assignments of a's children to q's
// children. A trailing leaf child with indirect connection or negation is
// not assigned; instead it counts how many of the remaining target
// children it matches.
func (vm *VM) assign(q *QueryNode, a tree.Node) (bool, error) {
	kids := a.Children()
	strict := q.Children
	var last *QueryNode
	if n := len(q.Children); n > 0 {
		if l := q.Children[n-1]; l.isLeaf() && (l.Quant.Indirect || l.Negate) {
			last, strict = l, q.Children[:n-1]
		}
	}

	// Without indirect connections a pair's result does not depend on skip
	// counters, so it is computed once and a child with no candidate fails
	// the node before any permutation is tried.
	var table [][]pairResult
	if !q.Quant.Indirect && !q.indirectBelow {
		table = make([][]pairResult, len(q.Children))
		for i := range table {
			table[i] = make([]pairResult, len(kids))
		}
	}
	matchPair := func(i, j int) (bool, error) {
		if table != nil && table[i][j] != pairUnknown {
			return table[i][j] == pairYes, nil
		}
		ok, err := vm.match(q.Children[i], kids[j])
		if err != nil {
			return false, err
		}
		if table != nil {
			table[i][j] = pairNo
			if ok {
				table[i][j] = pairYes
			}
		}
		return ok, nil
	}
	if table != nil {
		for i := range strict {
			seen := false
			for j := range kids {
				ok, err := matchPair(i, j)
				if err != nil {
					return false, err
				}
				seen = seen || ok
			}
			if !seen {
				return false, nil
			}
		}
	}

	used := make([]bool, len(kids))
	var prefixOK, sawCount bool

	var try func(i int) (bool, error)
	try = func(i int) (bool, error) {
		if i == len(strict) {
			if last == nil {
				return true, nil
			}
			prefixOK = true
			count := 0
			for j := range kids {
				if used[j] {
					continue
				}
				ok, err := matchPair(len(strict), j)
				if err != nil {
					return false, err
				}
				if ok {
					count++
				}
			}
			if count == 0 {
				return false, nil
			}
			sawCount = true
			return last.Quant.inRange(count), nil
		}

		for j := range kids {
			if used[j] {
				continue
			}
			ok, err := matchPair(i, j)
			if err != nil {
				return false, err
			}
			// still below the lower bound of skipped nodes
			if !ok || !q.Quant.inLow(q.skipped) {
				continue
			}
			used[j] = true
			found, err := try(i + 1)
			used[j] = false
			if err != nil || found {
				return found, err
			}
		}
		return false, nil
	}

	found, err := try(0)
	if err != nil {
		return false, err
	}
	if !found && last != nil && !sawCount && prefixOK {
		found = last.Quant.DirectFirst
	}
	return found, nil
}
