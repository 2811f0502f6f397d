package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopology(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a;", "a;"},
		{"(a,b)c;", "(a,b)c;"},
		{" ((c, d, e, f)b)a ; ", "((c,d,e,f)b)a;"},
		{"(((c,d),(e,f)b)a);", "(((c,d),(e,f)b)a);"},
		{"(a:0.5,b:1e-2)root:0;", "(a,b)root;"},
		{"(a[comment],b)c", "(a,b)c;"},
		{"(,)", "(,);"},
		{"('x y','it''s')z;", "('x y','it''s')z;"},
		{`("@.dist > 0.4")a;`, "('@.dist > 0.4')a;"},
	}
	for _, tt := range tests {
		tr, err := Parse(tt.input)
		require.NoError(t, err, "Parse(%q)", tt.input)
		assert.Equal(t, tt.want, Format(tr), "Format(Parse(%q))", tt.input)
	}
}

func TestParseLabelsAndLengths(t *testing.T) {
	tr := MustParse("('Homo sapiens':0.25,b)'a, ^';")

	require.Len(t, tr.Children(), 2)
	assert.Equal(t, "a, ^", tr.Name())

	human := tr.Find("Homo sapiens")
	require.NotNil(t, human)
	assert.InDelta(t, 0.25, human.Dist, 1e-9)
	assert.Equal(t, DefaultSupport, human.Support)

	b := tr.Find("b")
	require.NotNil(t, b)
	assert.Equal(t, DefaultDist, b.Dist)
	assert.Same(t, tr, b.Parent())
	assert.Nil(t, tr.Parent())
}

func TestParseNHX(t *testing.T) {
	tr := MustParse("((a[&&NHX:S=Human:D=N],b[&&NHX:S=Mouse:score=3.5])x[&&NHX:D=Y:support=90]);")

	a := tr.Find("a")
	require.NotNil(t, a)
	sp, ok := a.Attr("species")
	require.True(t, ok)
	assert.Equal(t, "Human", sp)
	ev, _ := a.Attr("evoltype")
	assert.Equal(t, "S", ev)

	b := tr.Find("b")
	score, ok := b.Attr("score")
	require.True(t, ok)
	assert.Equal(t, 3.5, score)

	x := tr.Find("x")
	ev, _ = x.Attr("evoltype")
	assert.Equal(t, "D", ev)
	assert.Equal(t, 90.0, x.Support)
}

func TestParseNormalizesLabels(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	tr := MustParse("(cafe\u0301)r;")
	assert.NotNil(t, tr.Find("caf\u00e9"))
}

func TestParseErrors(t *testing.T) {
	invalid := []struct {
		input string
		desc  string
	}{
		{"", "empty input"},
		{"(a,b", "unclosed group"},
		{"a)b;", "unmatched closing paren"},
		{"(a:x,b);", "invalid branch length"},
		{"('a,b);", "unterminated quote"},
		{"(a[,b);", "unclosed comment"},
		{"(a,b)c; d", "trailing text"},
	}
	for _, tt := range invalid {
		_, err := Parse(tt.input)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, "Parse(%q) should fail (%s)", tt.input, tt.desc)
	}
}

func TestRead(t *testing.T) {
	tr, err := Read(strings.NewReader("((c,g)a);\n"))
	require.NoError(t, err)
	assert.Equal(t, "((c,g)a);", tr.String())
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("(a") })
}

func TestSetAttr(t *testing.T) {
	n := New("x")
	n.SetAttr("dist", 0.5)
	n.SetAttr("support", 70.0)
	n.SetAttr("species", "Human")
	n.SetAttr("name", "y")

	assert.Equal(t, 0.5, n.Dist)
	assert.Equal(t, 70.0, n.Support)
	assert.Equal(t, "y", n.Name())
	v, ok := n.Attr("species")
	assert.True(t, ok)
	assert.Equal(t, "Human", v)
	_, ok = n.Attr("missing")
	assert.False(t, ok)
}
