package domain

import (
	"slices"
	"strings"
)

// Kind names a record namespace in the store.
type Kind string

// Record kinds.
const (
	KindImages       Kind = "images"
	KindGlazes       Kind = "glazes"
	KindApplications Kind = "applications"
	KindCombos       Kind = "combos"
	KindTags         Kind = "tags"
	KindPieces       Kind = "pieces"
	KindParts        Kind = "parts"
	KindBrands       Kind = "brands"
)

// Kinds lists every record kind in a stable order.
var Kinds = []Kind{
	KindImages,
	KindGlazes,
	KindApplications,
	KindCombos,
	KindTags,
	KindPieces,
	KindParts,
	KindBrands,
}

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// Relation is one side of a bidirectional edge between two kinds.
// Following Label from a record of kind From yields records of kind To,
// and the same edge is visible from the other side under Reverse.
type Relation struct {
	From    Kind
	Label   string
	To      Kind
	Reverse string
}

// relationPairs declares every edge once; the reverse side is derived.
var relationPairs = []Relation{
	{From: KindGlazes, Label: "brands", To: KindBrands, Reverse: "glazes"},
	{From: KindGlazes, Label: "tags", To: KindTags, Reverse: "glazes"},
	{From: KindGlazes, Label: "images", To: KindImages, Reverse: "glazes"},
	{From: KindGlazes, Label: "applications", To: KindApplications, Reverse: "glazes"},
	{From: KindGlazes, Label: "parts", To: KindParts, Reverse: "glazes"},
	{From: KindGlazes, Label: "pieces", To: KindPieces, Reverse: "glazes"},
	{From: KindCombos, Label: "applications", To: KindApplications, Reverse: "combos"},
	{From: KindCombos, Label: "tags", To: KindTags, Reverse: "combos"},
	{From: KindCombos, Label: "images", To: KindImages, Reverse: "combos"},
	{From: KindCombos, Label: "parts", To: KindParts, Reverse: "combos"},
	{From: KindCombos, Label: "pieces", To: KindPieces, Reverse: "combos"},
	{From: KindPieces, Label: "parts", To: KindParts, Reverse: "pieces"},
	{From: KindPieces, Label: "tags", To: KindTags, Reverse: "pieces"},
	{From: KindPieces, Label: "images", To: KindImages, Reverse: "pieces"},
}

// relations indexes both directions of every edge by kind and label.
var relations = buildRelations()

func buildRelations() map[Kind]map[string]Relation {
	out := make(map[Kind]map[string]Relation, len(Kinds))
	add := func(r Relation) {
		if out[r.From] == nil {
			out[r.From] = make(map[string]Relation)
		}
		out[r.From][r.Label] = r
	}
	for _, r := range relationPairs {
		add(r)
		add(Relation{From: r.To, Label: r.Reverse, To: r.From, Reverse: r.Label})
	}
	return out
}

// LookupRelation returns the relation reachable from kind under label.
func LookupRelation(kind Kind, label string) (Relation, bool) {
	r, ok := relations[kind][label]
	return r, ok
}

// RelationsOf returns every relation reachable from kind, ordered by label.
func RelationsOf(kind Kind) []Relation {
	out := make([]Relation, 0, len(relations[kind]))
	for _, r := range relations[kind] {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Relation) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// Edges returns every edge once, in its declared direction.
func Edges() []Relation {
	return slices.Clone(relationPairs)
}

// IsForward reports whether r is the declared direction of its edge.
// Each edge is stored in both directions; exports only need one.
func (r Relation) IsForward() bool {
	return slices.Contains(relationPairs, r)
}
