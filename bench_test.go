package treematcher

import (
	"testing"

	"github.com/dPliakos/treematcher/tree"
)

func BenchmarkCompile(b *testing.B) {
	pattern := `((('@.dist > 0.5', c)+, d{1-3})'n_leaves(@) > 2')a^;`
	for i := 0; i < b.N; i++ {
		if _, err := Compile(pattern); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseNewick(b *testing.B) {
	s := tree.Format(balancedTree(10))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tree.Parse(s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNameMatch(b *testing.B) {
	p := MustCompile("(n0101,n0100)n010;")
	target := balancedTree(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Find(target)
	}
}

// BenchmarkOneOrMore walks a + connector down every branch of the tree.
func BenchmarkOneOrMore(b *testing.B) {
	p := MustCompile("((n0000000000)+)n;")
	target := balancedTree(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Match(target)
	}
}

// BenchmarkLeafPredicate and BenchmarkLeafPredicateCached show the gain of
// precomputed leaf sets for helpers that look below the candidate.
func BenchmarkLeafPredicate(b *testing.B) {
	p := MustCompile("'n_leaves(@) == 8';")
	target := balancedTree(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.FindAll(target, Unlimited)
	}
}

func BenchmarkLeafPredicateCached(b *testing.B) {
	p := MustCompile("'n_leaves(@) == 8';")
	target := balancedTree(10)
	cache := NewCache(target)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.FindAll(target, Unlimited, WithCache(cache))
	}
}

func BenchmarkExtreme(b *testing.B) {
	p := MustCompile("'n_leaves(@) < n_leaves(all_nodes), not @.is_leaf()';")
	target := balancedTree(8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Find(target)
	}
}

func BenchmarkCacheBuild(b *testing.B) {
	target := balancedTree(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewCache(target)
	}
}
