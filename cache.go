package treematcher

import (
	"errors"

	"github.com/dPliakos/treematcher/tree"
)

// ErrStaleCache is returned by Cache.Verify when the tree changed shape
// after the cache was built.
var ErrStaleCache = errors.New("treematcher: cache is stale")

// Lookup abstracts leaf and descendant queries so that helpers work the same
// with and without a prebuilt Cache.
type Lookup interface {
	// Leaves returns the leaves under n, n itself if it is a leaf.
	Leaves(n tree.Node) []tree.Node
	// Descendants returns n and every node below it in preorder.
	Descendants(n tree.Node) []tree.Node
}

// uncached answers every query by walking the tree.
type uncached struct{}

func (uncached) Leaves(n tree.Node) []tree.Node      { return tree.Leaves(n) }
func (uncached) Descendants(n tree.Node) []tree.Node { return tree.Descendants(n) }

// Cache holds the leaf and descendant sets of every node of one tree,
// computed by a single postorder pass. A built Cache is read only and may
// be shared between searches.
type Cache struct {
	root        tree.Node
	size        int
	leaves      map[tree.Node][]tree.Node
	descendants map[tree.Node][]tree.Node
}

// NewCache builds the cache for the tree rooted at root.
func NewCache(root tree.Node) *Cache {
	c := &Cache{
		root:        root,
		leaves:      make(map[tree.Node][]tree.Node),
		descendants: make(map[tree.Node][]tree.Node),
	}
	for n := range tree.Traverse(root, tree.PostOrder) {
		c.size++
		kids := n.Children()
		if len(kids) == 0 {
			c.leaves[n] = []tree.Node{n}
			c.descendants[n] = []tree.Node{n}
			continue
		}
		var leaves []tree.Node
		desc := []tree.Node{n}
		for _, k := range kids {
			leaves = append(leaves, c.leaves[k]...)
			desc = append(desc, c.descendants[k]...)
		}
		c.leaves[n] = leaves
		c.descendants[n] = desc
	}
	return c
}

// Leaves falls back to a traversal for nodes the cache does not know.
func (c *Cache) Leaves(n tree.Node) []tree.Node {
	if l, ok := c.leaves[n]; ok {
		return l
	}
	return tree.Leaves(n)
}

func (c *Cache) Descendants(n tree.Node) []tree.Node {
	if d, ok := c.descendants[n]; ok {
		return d
	}
	return tree.Descendants(n)
}

// Len returns the number of nodes cached.
func (c *Cache) Len() int { return c.size }

// Verify walks the tree again and reports ErrStaleCache if a node was added
// or removed, or a node's leaf set no longer matches.
func (c *Cache) Verify() error {
	count := 0
	for n := range tree.Traverse(c.root, tree.PostOrder) {
		count++
		leaves, ok := c.leaves[n]
		if !ok {
			return ErrStaleCache
		}
		if len(n.Children()) == 0 {
			if len(leaves) != 1 || leaves[0] != n {
				return ErrStaleCache
			}
			continue
		}
		total := 0
		for _, k := range n.Children() {
			total += len(c.leaves[k])
		}
		if total != len(leaves) {
			return ErrStaleCache
		}
	}
	if count != c.size {
		return ErrStaleCache
	}
	return nil
}
