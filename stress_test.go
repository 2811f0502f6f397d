package treematcher

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dPliakos/treematcher/tree"
)

// balancedTree builds a complete binary tree. Children append "0" or "1" to
// their parent's name, so leaves carry their path from the root.
func balancedTree(depth int) *tree.Tree {
	root := tree.New("n")
	var grow func(n *tree.Tree, d int)
	grow = func(n *tree.Tree, d int) {
		if d == 0 {
			return
		}
		for i := 0; i < 2; i++ {
			grow(n.AddChild(tree.New(fmt.Sprintf("%s%d", n.Name(), i))), d-1)
		}
	}
	grow(root, depth)
	return root
}

// TestStressWideTree tests a root with many children
func TestStressWideTree(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	names := make([]string, 1000)
	for i := range names {
		names[i] = fmt.Sprintf("l%d", i)
	}
	target := tree.MustParse("(" + strings.Join(names, ",") + ")r;")

	for _, pattern := range []string{"(l999)r;", "(l0,l999)r;", "(l500,l3,l998)r;"} {
		ok, err := MustCompile(pattern).Match(target)
		if err != nil {
			t.Fatalf("Match(%q): %v", pattern, err)
		}
		if !ok {
			t.Errorf("Match(%q) on wide tree = false; want true", pattern)
		}
	}
	if ok, _ := MustCompile("(l1000)r;").Match(target); ok {
		t.Error("(l1000)r; should not match")
	}
}

// TestStressBalancedTree tests full enumeration on a large tree
func TestStressBalancedTree(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	target := balancedTree(12)
	cache := NewCache(target)

	tests := []struct {
		pattern string
		want    int
	}{
		{"@;", 1<<13 - 1},
		{"'@.is_leaf()';", 1 << 12},
		{"'n_leaves(@) == 4';", 1 << 10},
		{`'"n000000000000" in leaves(@)';`, 13},
		{`'@.name == "n0101"';`, 1},
	}
	for _, tt := range tests {
		p := MustCompile(tt.pattern)
		for _, opts := range [][]SearchOption{nil, {WithCache(cache)}} {
			got, err := p.FindAll(target, Unlimited, opts...)
			if err != nil {
				t.Fatalf("FindAll(%q): %v", tt.pattern, err)
			}
			if len(got) != tt.want {
				t.Errorf("FindAll(%q) = %d nodes; want %d (cached: %v)", tt.pattern, len(got), tt.want, opts != nil)
			}
		}
	}
}

// TestStressDeepChain tests quantifiers across a long chain of nodes
func TestStressDeepChain(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	depth := 500
	newick := "c"
	for i := 0; i < depth; i++ {
		newick = "(" + newick + ")x"
	}
	target := tree.MustParse("(" + newick + ")a;")

	tests := []struct {
		pattern string
		match   bool
	}{
		{"((c)+)a;", true},
		{fmt.Sprintf("((c){%d})a;", depth), true},
		{fmt.Sprintf("((c){0-%d})a;", depth-1), false},
		{"'n_leaves(@) == 1, @.is_root()';", true},
	}
	for _, tc := range tests {
		got, err := MustCompile(tc.pattern).Match(target)
		if err != nil {
			t.Fatalf("Match(%q): %v", tc.pattern, err)
		}
		if got != tc.match {
			t.Errorf("Match(%q) on %d-level chain = %v; want %v", tc.pattern, depth, got, tc.match)
		}
	}
}

// TestStressManyCandidates tests a search over tens of thousands of cheap
// candidates
func TestStressManyCandidates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	target := sixLeafForest(6000, "q")
	all, err := MustCompile("(@,@,@,@,@,q)@;").FindAll(target, Unlimited)
	if err != nil {
		t.Fatalf("FindAll on 6000 candidates: %v", err)
	}
	if len(all) != 6000 {
		t.Errorf("FindAll found %d nodes; want 6000", len(all))
	}

	none, err := MustCompile("(@,@,@,@,@,z)@;").FindAll(target, Unlimited)
	if err != nil {
		t.Fatalf("FindAll without matches: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("FindAll found %d nodes; want 0", len(none))
	}
}
