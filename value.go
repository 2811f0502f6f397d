package treematcher

import (
	"fmt"
	"math"
	"strings"

	"github.com/dPliakos/treematcher/tree"
)

// Func is a callable predicate value: a helper from the Syntax table or a
// bound node method such as @.is_leaf.
type Func func(args []any) (any, error)

// normalize maps attribute values onto the predicate value set:
// nil, bool, float64, string, []any, tree.Node and Func.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []tree.Node:
		return nodeList(x)
	case []float64:
		out := make([]any, len(x))
		for i, f := range x {
			out[i] = f
		}
		return out
	case func(args []any) (any, error):
		return Func(x)
	}
	return v
}

func nodeList(nodes []tree.Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case tree.Node:
		return "node"
	case Func:
		return "function"
	}
	return fmt.Sprintf("%T", v)
}

// equal is structural for lists and identity for nodes.
func equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case tree.Node:
		y, ok := b.(tree.Node)
		return ok && x == y
	}
	return false
}

// compare orders two numbers or two strings.
func compare(op TokenType, a, b any) (bool, error) {
	var c int
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return false, mismatch(op, a, b)
		}
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	case string:
		y, ok := b.(string)
		if !ok {
			return false, mismatch(op, a, b)
		}
		c = strings.Compare(x, y)
	default:
		return false, mismatch(op, a, b)
	}
	switch op {
	case TokenLt:
		return c < 0, nil
	case TokenLe:
		return c <= 0, nil
	case TokenGt:
		return c > 0, nil
	case TokenGe:
		return c >= 0, nil
	}
	return false, runtimeErrorf("bad comparison operator %v", op)
}

// contains implements "in": list membership or substring.
func contains(container, item any) (bool, error) {
	switch c := container.(type) {
	case []any:
		for _, v := range c {
			if equal(v, item) {
				return true, nil
			}
		}
		return false, nil
	case string:
		s, ok := item.(string)
		if !ok {
			return false, mismatch(TokenIn, item, container)
		}
		return strings.Contains(c, s), nil
	}
	return false, mismatch(TokenIn, item, container)
}

func arith(op TokenType, a, b any) (any, error) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			break
		}
		switch op {
		case TokenPlus:
			return x + y, nil
		case TokenMinus:
			return x - y, nil
		case TokenStar:
			return x * y, nil
		case TokenSlash:
			if y == 0 {
				return nil, runtimeErrorf("division by zero")
			}
			return x / y, nil
		case TokenPercent:
			if y == 0 {
				return nil, runtimeErrorf("division by zero")
			}
			return math.Mod(x, y), nil
		}
	case string:
		if y, ok := b.(string); ok && op == TokenPlus {
			return x + y, nil
		}
	case []any:
		if y, ok := b.([]any); ok && op == TokenPlus {
			out := make([]any, 0, len(x)+len(y))
			return append(append(out, x...), y...), nil
		}
	}
	return nil, mismatch(op, a, b)
}

// index supports lists and strings, negative indices counting from the end.
func index(x, i any) (any, error) {
	f, ok := i.(float64)
	if !ok || f != math.Trunc(f) {
		return nil, runtimeErrorf("index must be an integer, got %s", typeName(i))
	}
	n := int(f)
	switch c := x.(type) {
	case []any:
		if n < 0 {
			n += len(c)
		}
		if n < 0 || n >= len(c) {
			return nil, runtimeErrorf("index %d out of range [0:%d]", int(f), len(c))
		}
		return c[n], nil
	case string:
		r := []rune(c)
		if n < 0 {
			n += len(r)
		}
		if n < 0 || n >= len(r) {
			return nil, runtimeErrorf("index %d out of range [0:%d]", int(f), len(r))
		}
		return string(r[n]), nil
	}
	return nil, runtimeErrorf("cannot index %s", typeName(x))
}

func length(v any) (float64, error) {
	switch x := v.(type) {
	case []any:
		return float64(len(x)), nil
	case string:
		return float64(len([]rune(x))), nil
	case tree.Node:
		return float64(len(x.Children())), nil
	}
	return 0, runtimeErrorf("len of %s", typeName(v))
}

func mismatch(op TokenType, a, b any) *PredicateError {
	return runtimeErrorf("unsupported operand types for %v: %s and %s", op, typeName(a), typeName(b))
}

// nodeAttr resolves n.name on a target node.
func nodeAttr(n tree.Node, name string) (any, error) {
	switch name {
	case "name":
		return n.Name(), nil
	case "children":
		return nodeList(n.Children()), nil
	case "up", "parent":
		if p := n.Parent(); p != nil {
			return p, nil
		}
		return nil, nil
	case "is_leaf":
		return Func(func(args []any) (any, error) {
			if len(args) != 0 {
				return nil, runtimeErrorf("is_leaf takes no arguments")
			}
			return tree.IsLeaf(n), nil
		}), nil
	case "is_root":
		return Func(func(args []any) (any, error) {
			if len(args) != 0 {
				return nil, runtimeErrorf("is_root takes no arguments")
			}
			return tree.IsRoot(n), nil
		}), nil
	}
	if v, ok := n.Attr(name); ok {
		return normalize(v), nil
	}
	return nil, runtimeErrorf("node %q has no attribute %q", n.Name(), name)
}
