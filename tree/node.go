// Package tree provides the labeled tree consumed by the matcher: an
// abstract Node interface, a concrete Tree, traversal orders and a Newick
// reader and writer.
package tree

// Node is a read-only view of one node of a labeled, unordered tree.
type Node interface {
	Name() string
	Children() []Node
	// Parent returns nil for the root.
	Parent() Node
	// Attr returns a named attribute. Implementations expose at least
	// "name"; Tree also exposes "dist" and "support".
	Attr(key string) (any, bool)
}

// DefaultDist and DefaultSupport are assigned to nodes whose Newick text
// carries no branch length or support value.
const (
	DefaultDist    = 1.0
	DefaultSupport = 1.0
)

// Tree is the default Node implementation.
type Tree struct {
	name     string
	Dist     float64
	Support  float64
	attrs    map[string]any
	children []Node
	parent   *Tree
}

// New returns a detached node with default distance and support.
func New(name string) *Tree {
	return &Tree{name: name, Dist: DefaultDist, Support: DefaultSupport}
}

func (t *Tree) Name() string { return t.name }

func (t *Tree) SetName(name string) { t.name = name }

func (t *Tree) Children() []Node { return t.children }

// Parent returns nil (not a typed nil) for the root.
func (t *Tree) Parent() Node {
	if t.parent == nil {
		return nil
	}
	return t.parent
}

func (t *Tree) Attr(key string) (any, bool) {
	switch key {
	case "name":
		return t.name, true
	case "dist":
		return t.Dist, true
	case "support":
		return t.Support, true
	}
	v, ok := t.attrs[key]
	return v, ok
}

func (t *Tree) SetAttr(key string, v any) {
	switch key {
	case "name":
		if s, ok := v.(string); ok {
			t.name = s
		}
		return
	case "dist":
		if f, ok := v.(float64); ok {
			t.Dist = f
		}
		return
	case "support":
		if f, ok := v.(float64); ok {
			t.Support = f
		}
		return
	}
	if t.attrs == nil {
		t.attrs = make(map[string]any)
	}
	t.attrs[key] = v
}

// AddChild attaches c under t and returns c.
func (t *Tree) AddChild(c *Tree) *Tree {
	c.parent = t
	t.children = append(t.children, c)
	return c
}

// AddChildren is AddChild for each name, returning t.
func (t *Tree) AddChildren(names ...string) *Tree {
	for _, n := range names {
		t.AddChild(New(n))
	}
	return t
}

// Find returns the first node named name in preorder, or nil.
func (t *Tree) Find(name string) *Tree {
	for n := range Traverse(t, PreOrder) {
		if n.Name() == name {
			if tt, ok := n.(*Tree); ok {
				return tt
			}
		}
	}
	return nil
}

// String returns the Newick form of the subtree rooted at t.
func (t *Tree) String() string {
	return Format(t)
}

func IsLeaf(n Node) bool { return len(n.Children()) == 0 }

func IsRoot(n Node) bool { return n.Parent() == nil }

// Root climbs parents up to the root of n's tree.
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// Siblings returns the other children of n's parent.
func Siblings(n Node) []Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	var out []Node
	for _, c := range p.Children() {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}
