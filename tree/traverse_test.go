package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func collect(root Node, order Order) []string {
	var out []string
	for n := range Traverse(root, order) {
		out = append(out, n.Name())
	}
	return out
}

func TestTraverseOrders(t *testing.T) {
	tr := MustParse("((c,d)b,(f)e)a;")

	tests := []struct {
		order Order
		want  []string
	}{
		{PreOrder, []string{"a", "b", "c", "d", "e", "f"}},
		{PostOrder, []string{"c", "d", "b", "f", "e", "a"}},
		{LevelOrder, []string{"a", "b", "e", "c", "d", "f"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collect(tr, tt.order), "order %v", tt.order)
	}
}

func TestTraverseStopsEarly(t *testing.T) {
	tr := MustParse("((c,d)b,(f)e)a;")
	for _, order := range []Order{PreOrder, PostOrder, LevelOrder} {
		var seen int
		for range Traverse(tr, order) {
			seen++
			if seen == 2 {
				break
			}
		}
		assert.Equal(t, 2, seen, "order %v", order)
	}
}

func TestParseOrder(t *testing.T) {
	for _, o := range []Order{PreOrder, PostOrder, LevelOrder} {
		got, err := ParseOrder(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseOrder("inorder")
	assert.Error(t, err)
}

func TestLeavesAndDescendants(t *testing.T) {
	tr := MustParse("((c,d)b,(f)e)a;")

	assert.Equal(t, []string{"c", "d", "f"}, names(Leaves(tr)))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, names(Descendants(tr)))

	c := tr.Find("c")
	assert.Equal(t, []string{"c"}, names(Leaves(c)))
	assert.Equal(t, []string{"c"}, names(Descendants(c)))
}

func TestRelatives(t *testing.T) {
	tr := MustParse("((c,d,x)b,(f)e)a;")
	c := tr.Find("c")

	assert.True(t, IsLeaf(c))
	assert.False(t, IsRoot(c))
	assert.True(t, IsRoot(tr))
	assert.Same(t, tr, Root(c))
	assert.Equal(t, []string{"d", "x"}, names(Siblings(c)))
	assert.Empty(t, Siblings(tr))
}
