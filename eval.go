package treematcher

import (
	"errors"
	"fmt"

	"github.com/dPliakos/treematcher/tree"
)

// evaluator computes predicate values against one candidate node.
type evaluator struct {
	syntax *Syntax
	lookup Lookup
	self   tree.Node
	vars   map[string]any // child, all_nodes
}

// test evaluates x and requires a boolean result.
func (e *evaluator) test(x Expr) (bool, error) {
	v, err := e.eval(x)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, &PredicateError{Kind: ErrKindNotBoolean, Msg: fmt.Sprintf("predicate yields %s, not bool", typeName(v))}
	}
	return b, nil
}

func (e *evaluator) eval(x Expr) (any, error) {
	switch n := x.(type) {
	case *Literal:
		return n.Val, nil

	case *Self:
		return e.self, nil

	case *Ident:
		if v, ok := e.vars[n.Name]; ok {
			return v, nil
		}
		if h, ok := e.syntax.helper(n.Name); ok {
			return Func(func(args []any) (any, error) { return h(e.lookup, args) }), nil
		}
		return nil, &PredicateError{Kind: ErrKindUndefined, Msg: fmt.Sprintf("name %q is not defined", n.Name)}

	case *Attr:
		v, err := e.eval(n.X)
		if err != nil {
			return nil, err
		}
		node, ok := v.(tree.Node)
		if !ok {
			return nil, runtimeErrorf("%s has no attribute %q", typeName(v), n.Name)
		}
		return nodeAttr(node, n.Name)

	case *Index:
		v, err := e.eval(n.X)
		if err != nil {
			return nil, err
		}
		i, err := e.eval(n.Index)
		if err != nil {
			return nil, err
		}
		return index(v, i)

	case *Call:
		fn, err := e.eval(n.Fn)
		if err != nil {
			return nil, err
		}
		f, ok := fn.(Func)
		if !ok {
			return nil, runtimeErrorf("%s is not callable", typeName(fn))
		}
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			if args[i], err = e.eval(a); err != nil {
				return nil, err
			}
		}
		v, err := f(args)
		if err != nil {
			return nil, err
		}
		return normalize(v), nil

	case *Unary:
		if n.Op == TokenNot {
			b, err := e.test(n.X)
			if err != nil {
				return nil, err
			}
			return !b, nil
		}
		v, err := e.eval(n.X)
		if err != nil {
			return nil, err
		}
		f, ok := v.(float64)
		if !ok {
			return nil, runtimeErrorf("bad operand type for unary -: %s", typeName(v))
		}
		return -f, nil

	case *Binary:
		return e.binary(n)

	case *List:
		out := make([]any, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.eval(el)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case *ChildSet:
		return e.childSet(n)
	}
	return nil, runtimeErrorf("unknown expression %T", x)
}

func (e *evaluator) binary(n *Binary) (any, error) {
	switch n.Op {
	case TokenAnd, TokenOr:
		l, err := e.test(n.Left)
		if err != nil {
			return nil, err
		}
		if n.Op == TokenAnd && !l || n.Op == TokenOr && l {
			return l, nil
		}
		return e.test(n.Right)
	}

	l, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case TokenEq:
		return equal(l, r), nil
	case TokenNe:
		return !equal(l, r), nil
	case TokenLt, TokenLe, TokenGt, TokenGe:
		return compare(n.Op, l, r)
	case TokenIn:
		return contains(r, l)
	case TokenNotIn:
		ok, err := contains(r, l)
		return !ok, err
	}
	return arith(n.Op, l, r)
}

// childSet evaluates the body once per child of the candidate.
func (e *evaluator) childSet(n *ChildSet) (any, error) {
	saved, had := e.vars["child"]
	defer func() {
		if had {
			e.vars["child"] = saved
		} else {
			delete(e.vars, "child")
		}
	}()
	for _, c := range e.self.Children() {
		e.vars["child"] = c
		ok, err := e.test(n.Body)
		if err != nil {
			return nil, err
		}
		if ok != n.All {
			return ok, nil
		}
	}
	return n.All, nil
}

// evaluate runs a boolean predicate against node with optional extra
// bindings, filling in the error context.
func evaluate(x Expr, source string, node tree.Node, syntax *Syntax, lookup Lookup, vars map[string]any) (bool, error) {
	e := &evaluator{syntax: syntax, lookup: lookup, self: node, vars: make(map[string]any, len(vars)+1)}
	for k, v := range vars {
		e.vars[k] = v
	}
	ok, err := e.test(x)
	if err != nil {
		var pe *PredicateError
		if errors.As(err, &pe) {
			pe.Source = source
			if node != nil {
				pe.Node = node.Name()
			}
		}
		return false, err
	}
	return ok, nil
}
