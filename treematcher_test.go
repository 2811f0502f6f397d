package treematcher

import (
	"testing"

	"github.com/dPliakos/treematcher/tree"
)

func TestMatchSimple(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		match   bool
	}{
		{"a;", "(a,b)r;", true},
		{"x;", "(a,b)r;", false},
		{"(a,b)r;", "((a,b)r)top;", true},
		{"(a,b)r;", "((b,a)r)top;", true}, // children are unordered
		{"(a,b)r;", "((a,c)r)top;", false},
		{"(a)r;", "(a,b)r;", true},
		{"(a,b,c)r;", "(a,b)r;", false},
		{"'Homo sapiens';", "('Homo sapiens',b)r;", true},
		{"x1;", "(x1,b)r;", true},
		{"(,)r;", "(a,b)r;", true},
		{"(,)r;", "(a)r;", false},
		{"((a,b)c)d;", "a;", false},
	}
	for _, tc := range tests {
		p := MustCompile(tc.pattern)
		got, err := p.Match(tree.MustParse(tc.target))
		if err != nil {
			t.Fatalf("Match(%q, %q): %v", tc.pattern, tc.target, err)
		}
		if got != tc.match {
			t.Errorf("Match(%q, %q) = %v; want %v", tc.pattern, tc.target, got, tc.match)
		}
	}
}

func TestMatchPredicates(t *testing.T) {
	const target = "((c:0.5,d:0.2)b:0.3,e:2)a;"
	tests := []struct {
		pattern string
		match   bool
	}{
		{`'@.dist > 1';`, true},
		{`'@.dist > 5';`, false},
		{`'@.name == "b", n_leaves(@) == 2';`, true},
		{`'@.name == "b" and n_leaves(@) == 3';`, false},
		{`'@.name in ["x", "d"]';`, true},
		{`'@.name not in ["a", "b", "c", "d", "e"]';`, false},
		{`'len(@.children) == 2 and @.is_root()';`, true},
		{`'@.is_leaf() && @.dist < 0.3';`, true},
		{`'contains_leaves(@, ["c", "e"])';`, true},
		{`'contains_leaves(@, ["c", "x"])';`, false},
		{`'"c" in leaves(@) and not "e" in leaves(@)';`, true},
		{`'@.dist * 2 == 1';`, true},
		{`'-@.dist < -1.5';`, true},
		{`'@.name + "x" == "bx"';`, true},
		{`'descendants(@) == ["b", "c", "d"]';`, true},
		{`'children[child.is_leaf()], len(@.children) > 0';`, true},
		{`'any_child[child.name == "e"]';`, true},
		{`'any_child[child.name == "z"]';`, false},
		{`'(@.name == "z" || @.name == "e") and !@.is_root()';`, true},
		{`('@.up.name == "b"')b;`, true},
	}
	for _, tc := range tests {
		p := MustCompile(tc.pattern)
		got, err := p.Match(tree.MustParse(target))
		if err != nil {
			t.Fatalf("Match(%q): %v", tc.pattern, err)
		}
		if got != tc.match {
			t.Errorf("Match(%q, %q) = %v; want %v", tc.pattern, target, got, tc.match)
		}
	}
}

// TestAnchors tests ^, $ and ! markers.
func TestAnchors(t *testing.T) {
	const target = "((c,d)b,e)a;"
	tests := []struct {
		pattern string
		match   bool
	}{
		{"a^;", true},
		{"b^;", false},
		{"c$;", true},
		{"b$;", false},
		{"'@$';", true},
		{"'@^$';", false},
		{"(c$)b;", true},
		{"(b$)a;", false},
		{"(b^)a;", false},
		{"b!;", true},
		{"'@!';", false},
		{"(x!,e)a;", true},
		{"(b!,e)a;", false},
	}
	for _, tc := range tests {
		p := MustCompile(tc.pattern)
		got, err := p.Match(tree.MustParse(target))
		if err != nil {
			t.Fatalf("Match(%q): %v", tc.pattern, err)
		}
		if got != tc.match {
			t.Errorf("Match(%q, %q) = %v; want %v", tc.pattern, target, got, tc.match)
		}
	}
}

func TestRootAnchoredNegation(t *testing.T) {
	p := MustCompile(`(('d!','@.dist > 0.4')b)'a, ^';`)
	target := tree.MustParse("((c:0.5,d,e:0.5,f:0.5)b)a;")

	m, err := p.Find(target)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Name() != "a" {
		t.Errorf("Find = %v; want the root a", m)
	}

	// the same pattern cannot root below the target root
	ok, err := p.MatchNode(target.Find("b"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("MatchNode(b) = true; want false")
	}
}
