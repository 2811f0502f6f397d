// Package treematcher matches tree patterns against labeled trees.
//
// A pattern is a tree in Newick notation whose labels are predicates over
// target nodes, optionally followed by metacharacters:
//
//	^        the target node must be the root
//	$        the target node must be a leaf
//	!        negate the node's test
//	+ * ?    one-or-more, zero-or-more, zero-or-one intermediate nodes
//	{lo-hi}  between lo and hi intermediate nodes ({n}, {lo-}, {-hi})
//
// A label that is a plain word matches by name; anything mentioning @ is an
// expression over the candidate node, e.g. '@.dist > 0.4, n_leaves(@) > 2'.
// Commas join clauses with "and".
//
//	p := treematcher.MustCompile("((c)+)a;")
//	for node, err := range p.Search(t, treematcher.WithMaxHits(treematcher.Unlimited)) {
//		...
//	}
package treematcher

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/dPliakos/treematcher/tree"
)

// Unlimited makes Search return every match.
const Unlimited = -1

type Pattern struct {
	expr    string
	root    *QueryNode
	extreme *QueryNode
	size    int
	syntax  *Syntax
	logger  *slog.Logger
}

type Option func(*Pattern)

// WithSyntax replaces the default helper table.
func WithSyntax(s *Syntax) Option {
	return func(p *Pattern) { p.syntax = s }
}

// WithLogger sets the logger for non-fatal predicate failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pattern) { p.logger = l }
}

func Compile(pattern string, opts ...Option) (*Pattern, error) {
	t, err := tree.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("treematcher: parse pattern: %w", err)
	}
	p, err := CompileTree(t, opts...)
	if err != nil {
		return nil, err
	}
	p.expr = pattern
	return p, nil
}

// CompileTree compiles a pattern that is already a tree.
func CompileTree(t tree.Node, opts ...Option) (*Pattern, error) {
	compiler := NewCompiler()
	root, err := compiler.Compile(t)
	if err != nil {
		return nil, err
	}
	p := &Pattern{
		expr:    tree.Format(t),
		root:    root,
		extreme: extremeNode(root),
		size:    compiler.nodes,
		syntax:  NewSyntax(),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

func MustCompile(pattern string, opts ...Option) *Pattern {
	p, err := Compile(pattern, opts...)
	if err != nil {
		panic(fmt.Sprintf("treematcher: Compile(%q): %v", pattern, err))
	}
	return p
}

type searchConfig struct {
	maxHits int
	order   tree.Order
	cache   *Cache
}

type SearchOption func(*searchConfig)

// WithMaxHits stops the search after n matches. The default is 1; a
// negative n returns every match.
func WithMaxHits(n int) SearchOption {
	return func(c *searchConfig) { c.maxHits = n }
}

// WithOrder sets the order in which target nodes are tried.
func WithOrder(o tree.Order) SearchOption {
	return func(c *searchConfig) { c.order = o }
}

// WithCache answers leaf and descendant queries from a prebuilt cache.
func WithCache(c *Cache) SearchOption {
	return func(cfg *searchConfig) { cfg.cache = c }
}

// Search yields the target nodes at which the pattern can be rooted, in
// traversal order. A fatal predicate error is yielded once, with a nil node,
// and ends the sequence. Patterns with an all_nodes selector yield at most
// one node, the best of all structural matches.
func (p *Pattern) Search(root tree.Node, opts ...SearchOption) iter.Seq2[tree.Node, error] {
	cfg := searchConfig{maxHits: 1, order: tree.PreOrder}
	for _, o := range opts {
		o(&cfg)
	}
	return func(yield func(tree.Node, error) bool) {
		if cfg.maxHits == 0 {
			return
		}
		vm := p.newVM(cfg.cache)

		if p.extreme != nil {
			var candidates []tree.Node
			for t := range tree.Traverse(root, cfg.order) {
				ok, err := vm.Run(t)
				if err != nil {
					yield(nil, err)
					return
				}
				if ok {
					candidates = append(candidates, t)
				}
			}
			best, err := vm.selectExtreme(p.extreme, candidates)
			if err != nil {
				yield(nil, err)
				return
			}
			if best != nil {
				yield(best, nil)
			}
			return
		}

		hits := 0
		for t := range tree.Traverse(root, cfg.order) {
			ok, err := vm.Run(t)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(t, nil) {
				return
			}
			hits++
			if cfg.maxHits > 0 && hits >= cfg.maxHits {
				return
			}
		}
	}
}

func (p *Pattern) newVM(cache *Cache) *VM {
	var lookup Lookup = uncached{}
	if cache != nil {
		lookup = cache
	}
	return NewVM(p.root, p.syntax, lookup, p.logger)
}

// Find returns the first match, or nil.
func (p *Pattern) Find(root tree.Node, opts ...SearchOption) (tree.Node, error) {
	opts = append(opts, WithMaxHits(1))
	for n, err := range p.Search(root, opts...) {
		return n, err
	}
	return nil, nil
}

// FindAll returns up to n matches; n < 0 returns all of them.
func (p *Pattern) FindAll(root tree.Node, n int, opts ...SearchOption) ([]tree.Node, error) {
	opts = append(opts, WithMaxHits(n))
	var out []tree.Node
	for m, err := range p.Search(root, opts...) {
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Match reports whether the pattern matches anywhere in the tree.
func (p *Pattern) Match(root tree.Node, opts ...SearchOption) (bool, error) {
	n, err := p.Find(root, opts...)
	return n != nil, err
}

// MatchNode reports whether the pattern can be rooted at n itself. The
// all_nodes selector, if any, is not applied.
func (p *Pattern) MatchNode(n tree.Node, opts ...SearchOption) (bool, error) {
	var cfg searchConfig
	for _, o := range opts {
		o(&cfg)
	}
	return p.newVM(cfg.cache).Run(n)
}

// String returns the source text used to compile the pattern.
func (p *Pattern) String() string {
	return p.expr
}

// Dump renders the compiled query, one node per line in preorder.
func (p *Pattern) Dump() string {
	var b strings.Builder
	p.root.dump(&b)
	return b.String()
}

// NumNodes returns the number of nodes in the pattern tree.
func (p *Pattern) NumNodes() int {
	return p.size
}

// IsExtreme reports whether the pattern has an all_nodes selector.
func (p *Pattern) IsExtreme() bool {
	return p.extreme != nil
}

// Root returns the compiled query. It must not be modified.
func (p *Pattern) Root() *QueryNode {
	return p.root
}
