package treematcher

import (
	"fmt"
	"slices"

	"github.com/dPliakos/treematcher/tree"
)

// Helper is a named function callable from predicates. The Lookup is the
// cache of the running search, or an uncached view when none was given.
type Helper func(l Lookup, args []any) (any, error)

// Syntax is the table of helpers visible to predicates. One Syntax is
// attached to a whole compiled pattern.
type Syntax struct {
	// SpeciesKey is the attribute holding a leaf's species.
	SpeciesKey string
	// EventKey is the attribute holding a node's evolutionary event, with
	// DuplicationTag and SpeciationTag as its values.
	EventKey       string
	DuplicationTag string
	SpeciationTag  string

	helpers map[string]Helper
}

// NewSyntax returns a Syntax with the builtin helpers:
//
//	leaves(n)                 sorted leaf names
//	descendants(n)            sorted names of n and everything below
//	species(n)                sorted distinct species of the leaves
//	contains_leaves(n, names) every name is a leaf name under n
//	contains_species(n, sp)   every species occurs under n
//	n_leaves(n), n_species(n)
//	n_duplications(n), n_speciations(n), n_events(n, kind)
//	len(x)
func NewSyntax() *Syntax {
	s := &Syntax{
		SpeciesKey:     "species",
		EventKey:       "evoltype",
		DuplicationTag: "D",
		SpeciationTag:  "S",
	}
	s.helpers = map[string]Helper{
		"leaves":           s.leaves,
		"descendants":      s.descendants,
		"species":          s.species,
		"contains_leaves":  s.containsLeaves,
		"contains_species": s.containsSpecies,
		"n_leaves":         s.nLeaves,
		"n_species":        s.nSpecies,
		"n_duplications":   s.nDuplications,
		"n_speciations":    s.nSpeciations,
		"n_events":         s.nEvents,
		"len":              s.lenOf,
	}
	return s
}

// Register adds or replaces a helper.
func (s *Syntax) Register(name string, h Helper) {
	s.helpers[name] = h
}

func (s *Syntax) helper(name string) (Helper, bool) {
	h, ok := s.helpers[name]
	return h, ok
}

// Names returns the registered helper names in sorted order.
func (s *Syntax) Names() []string {
	names := make([]string, 0, len(s.helpers))
	for n := range s.helpers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *Syntax) leaves(l Lookup, args []any) (any, error) {
	n, err := nodeArg("leaves", args, 1)
	if err != nil {
		return nil, err
	}
	return sortedNames(l.Leaves(n)), nil
}

func (s *Syntax) descendants(l Lookup, args []any) (any, error) {
	n, err := nodeArg("descendants", args, 1)
	if err != nil {
		return nil, err
	}
	return sortedNames(l.Descendants(n)), nil
}

func (s *Syntax) species(l Lookup, args []any) (any, error) {
	n, err := nodeArg("species", args, 1)
	if err != nil {
		return nil, err
	}
	return s.speciesOf(l, n), nil
}

func (s *Syntax) containsLeaves(l Lookup, args []any) (any, error) {
	n, err := nodeArg("contains_leaves", args, 2)
	if err != nil {
		return nil, err
	}
	want, err := stringSet("contains_leaves", args[1])
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool)
	for _, leaf := range l.Leaves(n) {
		have[leaf.Name()] = true
	}
	return containsAll(have, want), nil
}

func (s *Syntax) containsSpecies(l Lookup, args []any) (any, error) {
	n, err := nodeArg("contains_species", args, 2)
	if err != nil {
		return nil, err
	}
	want, err := stringSet("contains_species", args[1])
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool)
	for _, sp := range s.speciesOf(l, n) {
		have[sp.(string)] = true
	}
	return containsAll(have, want), nil
}

func (s *Syntax) nLeaves(l Lookup, args []any) (any, error) {
	n, err := nodeArg("n_leaves", args, 1)
	if err != nil {
		return nil, err
	}
	return float64(len(l.Leaves(n))), nil
}

func (s *Syntax) nSpecies(l Lookup, args []any) (any, error) {
	n, err := nodeArg("n_species", args, 1)
	if err != nil {
		return nil, err
	}
	return float64(len(s.speciesOf(l, n))), nil
}

func (s *Syntax) nDuplications(l Lookup, args []any) (any, error) {
	n, err := nodeArg("n_duplications", args, 1)
	if err != nil {
		return nil, err
	}
	return s.countEvents(l, n, s.DuplicationTag), nil
}

func (s *Syntax) nSpeciations(l Lookup, args []any) (any, error) {
	n, err := nodeArg("n_speciations", args, 1)
	if err != nil {
		return nil, err
	}
	return s.countEvents(l, n, s.SpeciationTag), nil
}

func (s *Syntax) nEvents(l Lookup, args []any) (any, error) {
	n, err := nodeArg("n_events", args, 2)
	if err != nil {
		return nil, err
	}
	kind, ok := args[1].(string)
	if !ok {
		return nil, runtimeErrorf("n_events: event kind must be a string, got %s", typeName(args[1]))
	}
	return s.countEvents(l, n, kind), nil
}

func (s *Syntax) lenOf(_ Lookup, args []any) (any, error) {
	if len(args) != 1 {
		return nil, runtimeErrorf("len takes 1 argument, got %d", len(args))
	}
	return length(args[0])
}

// speciesOf returns the distinct species of the leaves under n, sorted.
// Leaves without the species attribute are skipped.
func (s *Syntax) speciesOf(l Lookup, n tree.Node) []any {
	seen := make(map[string]bool)
	var out []string
	for _, leaf := range l.Leaves(n) {
		v, ok := leaf.Attr(s.SpeciesKey)
		if !ok {
			continue
		}
		sp := fmt.Sprint(v)
		if !seen[sp] {
			seen[sp] = true
			out = append(out, sp)
		}
	}
	slices.Sort(out)
	res := make([]any, len(out))
	for i, sp := range out {
		res[i] = sp
	}
	return res
}

func (s *Syntax) countEvents(l Lookup, n tree.Node, kind string) float64 {
	var count float64
	for _, d := range l.Descendants(n) {
		if v, ok := d.Attr(s.EventKey); ok && fmt.Sprint(v) == kind {
			count++
		}
	}
	return count
}

func nodeArg(fn string, args []any, want int) (tree.Node, error) {
	if len(args) != want {
		return nil, runtimeErrorf("%s takes %d argument(s), got %d", fn, want, len(args))
	}
	n, ok := args[0].(tree.Node)
	if !ok {
		return nil, runtimeErrorf("%s: expected a node, got %s", fn, typeName(args[0]))
	}
	return n, nil
}

// stringSet accepts a single name or a list of names.
func stringSet(fn string, v any) (map[string]bool, error) {
	set := make(map[string]bool)
	switch x := v.(type) {
	case string:
		set[x] = true
	case []any:
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, runtimeErrorf("%s: expected names, got %s", fn, typeName(e))
			}
			set[s] = true
		}
	default:
		return nil, runtimeErrorf("%s: expected a name or a list of names, got %s", fn, typeName(v))
	}
	return set, nil
}

func containsAll(have, want map[string]bool) bool {
	for k := range want {
		if !have[k] {
			return false
		}
	}
	return true
}

func sortedNames(nodes []tree.Node) []any {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name()
	}
	slices.Sort(names)
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}
