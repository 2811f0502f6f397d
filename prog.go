package treematcher

import (
	"fmt"
	"strings"
)

type QuantKind int

const (
	Exact      QuantKind = iota // plain node, direct connection only
	OneOrMore                   // +
	ZeroOrMore                  // *
	ZeroOrOne                   // ?
	Bounded                     // {low-high}
)

func (k QuantKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case OneOrMore:
		return "one-or-more"
	case ZeroOrMore:
		return "zero-or-more"
	case ZeroOrOne:
		return "zero-or-one"
	case Bounded:
		return "bounded"
	}
	return fmt.Sprintf("QuantKind(%d)", int(k))
}

// Quantifier describes how a query node connects to its target: how many
// intermediate target nodes may be skipped (Low..High, High -1 for no upper
// bound) and whether the zero-skip case is tried first.
type Quantifier struct {
	Kind        QuantKind
	Low         int
	High        int
	Indirect    bool
	DirectFirst bool
}

func (q Quantifier) inLow(n int) bool { return n >= q.Low }

func (q Quantifier) inHigh(n int) bool { return q.High < 0 || n <= q.High }

func (q Quantifier) inRange(n int) bool { return q.inLow(n) && q.inHigh(n) }

func (q Quantifier) String() string {
	if q.Kind == Exact {
		return "exact"
	}
	high := "inf"
	if q.High >= 0 {
		high = fmt.Sprint(q.High)
	}
	return fmt.Sprintf("%v[%d,%s]", q.Kind, q.Low, high)
}

type Anchors struct {
	Root bool // ^
	Leaf bool // $
}

// QueryNode is one compiled node of a pattern.
type QueryNode struct {
	Label  string // raw label text
	Source string // effective predicate text, "@" matches anything

	// Predicate is nil when the node matches any target node.
	Predicate Expr
	Quant     Quantifier
	Anchors   Anchors
	Negate    bool

	// Extreme, when set, marks the node as the extreme selector; @ is the
	// candidate and all_nodes the best candidate so far.
	Extreme       Expr
	ExtremeSource string

	Children []*QueryNode
	Parent   *QueryNode

	// skipped counts intermediate target nodes consumed by this node during
	// one search. Only ever touched on a per-search clone.
	skipped int

	// indirectBelow is set when some descendant has an indirect connection,
	// so match results under this node depend on skip counters.
	indirectBelow bool
}

func (q *QueryNode) isLeaf() bool { return len(q.Children) == 0 }

func (q *QueryNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v %q", q.Quant, q.Source)
	if q.Anchors.Root {
		b.WriteString(" root")
	}
	if q.Anchors.Leaf {
		b.WriteString(" leaf")
	}
	if q.Negate {
		b.WriteString(" not")
	}
	if q.Extreme != nil {
		fmt.Fprintf(&b, " extreme=%q", q.ExtremeSource)
	}
	return b.String()
}

// clone deep-copies the query structure. Expressions are immutable and
// shared.
func (q *QueryNode) clone(parent *QueryNode) *QueryNode {
	c := *q
	c.Parent = parent
	c.skipped = 0
	c.Children = make([]*QueryNode, len(q.Children))
	for i, k := range q.Children {
		c.Children[i] = k.clone(&c)
	}
	return &c
}

func (q *QueryNode) walk(fn func(*QueryNode, int), depth int) {
	fn(q, depth)
	for _, c := range q.Children {
		c.walk(fn, depth+1)
	}
}

func (q *QueryNode) dump(b *strings.Builder) {
	q.walk(func(n *QueryNode, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.String())
		b.WriteByte('\n')
	}, 0)
}
