package treematcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dPliakos/treematcher/tree"
)

// Compiler turns the labels of a pattern tree into QueryNodes.
type Compiler struct {
	extremes int
	nodes    int
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) Compile(root tree.Node) (*QueryNode, error) {
	c.extremes, c.nodes = 0, 0 // reset
	return c.compileNode(root, nil)
}

func (c *Compiler) compileNode(n tree.Node, parent *QueryNode) (*QueryNode, error) {
	q, err := compileLabel(n.Name())
	if err != nil {
		return nil, err
	}
	c.nodes++
	if q.Extreme != nil {
		c.extremes++
		if c.extremes > 1 {
			return nil, &SyntaxError{Label: q.Label, Pos: -1, Msg: "more than one all_nodes selector in pattern"}
		}
	}
	q.Parent = parent
	for _, k := range n.Children() {
		child, err := c.compileNode(k, q)
		if err != nil {
			return nil, err
		}
		q.Children = append(q.Children, child)
		q.indirectBelow = q.indirectBelow || child.Quant.Indirect || child.indirectBelow
	}
	return q, nil
}

// compileLabel compiles one node label: trailing metacharacters first, then
// the remaining predicate text.
func compileLabel(label string) (*QueryNode, error) {
	q := &QueryNode{Label: label, Quant: Quantifier{Kind: Exact, Low: 0, High: -1}}
	rest, err := q.stripMeta(label)
	if err != nil {
		return nil, err
	}
	q.Quant = quantFor(q.Quant)

	source, err := joinClauses(label, rest)
	if err != nil {
		return nil, err
	}
	q.Source = source
	if source == "@" {
		return q, nil
	}

	if !isExpression(source) {
		// plain node name
		q.Predicate = &Binary{
			Op:    TokenEq,
			Left:  &Attr{X: &Self{}, Name: "name"},
			Right: &Literal{Val: source},
		}
		return q, nil
	}

	x, err := NewParser(source).Parse()
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			se.Label = label
		}
		return nil, err
	}
	if refersTo(x, "all_nodes") {
		q.Extreme, q.ExtremeSource = x, source
		q.Source = "@"
		return q, nil
	}
	q.Predicate = x
	return q, nil
}

// stripMeta removes trailing metacharacters from label, right to left,
// recording them on q. It returns what is left of the label.
func (q *QueryNode) stripMeta(label string) (string, error) {
	var conn QuantKind // Exact until a connection quantifier is seen
	setConn := func(k QuantKind) error {
		if conn != Exact && conn != k {
			return &SyntaxError{Label: label, Pos: -1, Msg: fmt.Sprintf("conflicting quantifiers %v and %v", conn, k)}
		}
		conn = k
		return nil
	}

	s := label
	for len(s) > 0 {
		var err error
		switch s[len(s)-1] {
		case '^':
			q.Anchors.Root = true
		case '$':
			q.Anchors.Leaf = true
		case '!':
			q.Negate = true
		case '@':
		case '+':
			err = setConn(OneOrMore)
		case '*':
			err = setConn(ZeroOrMore)
		case '?':
			err = setConn(ZeroOrOne)
		case '}':
			open := strings.LastIndexByte(s, '{')
			if open < 0 {
				return "", &SyntaxError{Label: label, Pos: -1, Msg: "bounded quantifier without '{'"}
			}
			if conn == Bounded {
				return "", &SyntaxError{Label: label, Pos: -1, Msg: "more than one bounded quantifier"}
			}
			if err := setConn(Bounded); err != nil {
				return "", err
			}
			low, high, err := parseBounds(s[open+1 : len(s)-1])
			if err != nil {
				return "", &SyntaxError{Label: label, Pos: -1, Msg: err.Error()}
			}
			q.Quant.Low, q.Quant.High = low, high
			s = s[:open]
			continue
		default:
			q.Quant.Kind = conn
			return s, nil
		}
		if err != nil {
			return "", err
		}
		s = s[:len(s)-1]
	}
	q.Quant.Kind = conn
	return s, nil
}

// parseBounds decodes "low-high", "low-", "-high" or "n".
func parseBounds(s string) (low, high int, err error) {
	atoi := func(v string, def int) (int, error) {
		v = strings.TrimSpace(v)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid bound %q", v)
		}
		return n, nil
	}
	lo, hi, ranged := strings.Cut(s, "-")
	if !ranged {
		if strings.TrimSpace(s) == "" {
			return 0, 0, fmt.Errorf("empty bounds")
		}
		n, err := atoi(s, 0)
		return n, n, err
	}
	if low, err = atoi(lo, 0); err != nil {
		return 0, 0, err
	}
	if high, err = atoi(hi, -1); err != nil {
		return 0, 0, err
	}
	if high >= 0 && low > high {
		return 0, 0, fmt.Errorf("invalid range {%d-%d}: low > high", low, high)
	}
	return low, high, nil
}

// quantFor fills in the bounds and connection flags implied by the kind.
func quantFor(q Quantifier) Quantifier {
	switch q.Kind {
	case OneOrMore:
		return Quantifier{Kind: OneOrMore, Low: 1, High: -1, Indirect: true}
	case ZeroOrMore:
		return Quantifier{Kind: ZeroOrMore, Low: 0, High: -1, Indirect: true, DirectFirst: true}
	case ZeroOrOne:
		return Quantifier{Kind: ZeroOrOne, Low: 0, High: 1, Indirect: true, DirectFirst: true}
	case Bounded:
		q.Indirect = true
		q.DirectFirst = q.Low == 0
		return q
	}
	return Quantifier{Kind: Exact, Low: 0, High: -1}
}

// joinClauses splits the label body on top-level commas and rewrites bare
// words into name tests.
func joinClauses(label, body string) (string, error) {
	clauses, err := splitClauses(label, body)
	if err != nil {
		return "", err
	}
	var out []string
	for _, cl := range clauses {
		cl = strings.TrimSpace(cl)
		switch {
		case cl == "":
			continue
		case cl == "@" && len(clauses) > 1:
			// a bare reference adds nothing to other clauses
			continue
		case isWord(cl):
			cl = fmt.Sprintf("@.name == %q", cl)
		}
		out = append(out, cl)
	}
	if len(out) == 0 {
		return "@", nil
	}
	return strings.Join(out, " and "), nil
}

// splitClauses splits on commas outside brackets, parentheses and quotes.
func splitClauses(label, s string) ([]string, error) {
	var (
		out   []string
		stack []byte
		quote rune
		start int
	)
	closing := map[rune]byte{')': '(', ']': '['}
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			stack = append(stack, byte(r))
		case r == ')' || r == ']':
			if len(stack) == 0 || stack[len(stack)-1] != closing[r] {
				return nil, &SyntaxError{Label: label, Pos: i, Msg: fmt.Sprintf("unbalanced %q", r)}
			}
			stack = stack[:len(stack)-1]
		case r == ',' && len(stack) == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, &SyntaxError{Label: label, Pos: len(s), Msg: "unterminated string"}
	}
	if len(stack) > 0 {
		return nil, &SyntaxError{Label: label, Pos: len(s), Msg: fmt.Sprintf("unclosed %q", stack[len(stack)-1])}
	}
	return append(out, s[start:]), nil
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func isExpression(source string) bool {
	for _, marker := range []string{"@", "any_child[", "children[", "all_nodes"} {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

// refersTo reports whether x mentions the identifier name.
func refersTo(x Expr, name string) bool {
	switch n := x.(type) {
	case *Ident:
		return n.Name == name
	case *Attr:
		return refersTo(n.X, name)
	case *Index:
		return refersTo(n.X, name) || refersTo(n.Index, name)
	case *Call:
		if refersTo(n.Fn, name) {
			return true
		}
		for _, a := range n.Args {
			if refersTo(a, name) {
				return true
			}
		}
	case *Unary:
		return refersTo(n.X, name)
	case *Binary:
		return refersTo(n.Left, name) || refersTo(n.Right, name)
	case *List:
		for _, e := range n.Elems {
			if refersTo(e, name) {
				return true
			}
		}
	case *ChildSet:
		return refersTo(n.Body, name)
	}
	return false
}
