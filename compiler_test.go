package treematcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dPliakos/treematcher/tree"
)

func TestCompileLabel(t *testing.T) {
	tests := []struct {
		label  string
		source string
		quant  Quantifier
		root   bool
		leaf   bool
		negate bool
	}{
		{"a", `@.name == "a"`, Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"a1", "a1", Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"", "@", Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"@@", "@", Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"+", "@", Quantifier{Kind: OneOrMore, Low: 1, High: -1, Indirect: true}, false, false, false},
		{"c*^", `@.name == "c"`, Quantifier{Kind: ZeroOrMore, High: -1, Indirect: true, DirectFirst: true}, true, false, false},
		{"?", "@", Quantifier{Kind: ZeroOrOne, High: 1, Indirect: true, DirectFirst: true}, false, false, false},
		{"x{2-4}$", `@.name == "x"`, Quantifier{Kind: Bounded, Low: 2, High: 4, Indirect: true}, false, true, false},
		{"{0-3}", "@", Quantifier{Kind: Bounded, Low: 0, High: 3, Indirect: true, DirectFirst: true}, false, false, false},
		{"x!", `@.name == "x"`, Quantifier{Kind: Exact, High: -1}, false, false, true},
		{"@.dist > 0.5", "@.dist > 0.5", Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"a, @.dist > 1", `@.name == "a" and @.dist > 1`, Quantifier{Kind: Exact, High: -1}, false, false, false},
		{"@, b", `@.name == "b"`, Quantifier{Kind: Exact, High: -1}, false, false, false},
		{`@.name in ["a", "b"], @.dist < 2^$`, `@.name in ["a", "b"] and @.dist < 2`, Quantifier{Kind: Exact, High: -1}, true, true, false},
	}
	for _, tt := range tests {
		q, err := compileLabel(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.source, q.Source, "source of %q", tt.label)
		assert.Equal(t, tt.quant, q.Quant, "quantifier of %q", tt.label)
		assert.Equal(t, tt.root, q.Anchors.Root, "root anchor of %q", tt.label)
		assert.Equal(t, tt.leaf, q.Anchors.Leaf, "leaf anchor of %q", tt.label)
		assert.Equal(t, tt.negate, q.Negate, "negation of %q", tt.label)
		assert.Equal(t, tt.source == "@", q.Predicate == nil, "predicate of %q", tt.label)
	}
}

func TestCompileLabelExtreme(t *testing.T) {
	q, err := compileLabel("@.dist > all_nodes.dist")
	require.NoError(t, err)
	assert.Equal(t, "@", q.Source)
	assert.Nil(t, q.Predicate)
	assert.NotNil(t, q.Extreme)
	assert.Equal(t, "@.dist > all_nodes.dist", q.ExtremeSource)
}

func TestCompileLabelErrors(t *testing.T) {
	labels := []string{
		"a}",
		"a{x}",
		"a{1}{2}",
		"a+?",
		"@.name ==",
		"@.children[0",
		`@.name == "x`,
	}
	for _, label := range labels {
		_, err := compileLabel(label)
		var se *SyntaxError
		if assert.ErrorAs(t, err, &se, label) {
			assert.Equal(t, label, se.Label)
		}
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in        string
		low, high int
		ok        bool
	}{
		{"3", 3, 3, true},
		{" 2 ", 2, 2, true},
		{"2-", 2, -1, true},
		{"-4", 0, 4, true},
		{"1-3", 1, 3, true},
		{"-", 0, -1, true},
		{"0", 0, 0, true},
		{"", 0, 0, false},
		{"x", 0, 0, false},
		{"a-", 0, 0, false},
		{"3-2", 0, 0, false},
		{"1-2-3", 0, 0, false},
	}
	for _, tt := range tests {
		low, high, err := parseBounds(tt.in)
		if !tt.ok {
			assert.Error(t, err, "parseBounds(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "parseBounds(%q)", tt.in)
		assert.Equal(t, tt.low, low, "low of %q", tt.in)
		assert.Equal(t, tt.high, high, "high of %q", tt.in)
	}
}

func TestCompilerLinksParents(t *testing.T) {
	q, err := NewCompiler().Compile(tree.MustParse("((c,d)b+,e)a;"))
	require.NoError(t, err)

	var depths []int
	q.walk(func(n *QueryNode, depth int) {
		depths = append(depths, depth)
		for _, k := range n.Children {
			assert.Same(t, n, k.Parent)
		}
	}, 0)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)
	assert.Nil(t, q.Parent)
}

func TestQuantifierString(t *testing.T) {
	assert.Equal(t, "exact", Quantifier{Kind: Exact, High: -1}.String())
	assert.Equal(t, "one-or-more[1,inf]", quantFor(Quantifier{Kind: OneOrMore}).String())
	assert.Equal(t, "bounded[2,4]", Quantifier{Kind: Bounded, Low: 2, High: 4}.String())
}

func TestCompilerMarksIndirectBelow(t *testing.T) {
	q, err := NewCompiler().Compile(tree.MustParse("(((x)c,d)b+,e)a;"))
	require.NoError(t, err)

	b := q.Children[0]
	assert.True(t, q.indirectBelow)
	assert.False(t, b.indirectBelow)
	assert.False(t, b.Children[0].indirectBelow)
	assert.False(t, q.Children[1].indirectBelow)
}
