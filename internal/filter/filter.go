package filter

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/format"
	"github.com/glazepal/glazepal/internal/query"
)

// GlazeResults is the filtered glaze list: glazes by name, then combos
// newest first.
type GlazeResults struct {
	Glazes []query.GlazeResponse `json:"glazes"`
	Combos []query.ComboResponse `json:"combos"`
}

// Len returns the number of result rows.
func (r GlazeResults) Len() int {
	return len(r.Glazes) + len(r.Combos)
}

// GlazesBrowse filters the glaze list screen.
func GlazesBrowse(view query.GlazesBrowse, s State) GlazeResults {
	return GlazeResults{
		Glazes: Glazes(view.Glazes, s),
		Combos: Combos(view.Combos, s),
	}
}

// Glazes keeps the glazes matching every filter, sorted by name.
// Tokens are the name, the variant and tag names.
func Glazes(glazes []query.GlazeResponse, s State) []query.GlazeResponse {
	q := NormalizeQuery(s.Query)
	out := make([]query.GlazeResponse, 0, len(glazes))
	for _, g := range glazes {
		if s.FiltersVariant() && g.Variant != s.Variant {
			continue
		}
		if !hasAllTags(s.Tags, g.Tags) {
			continue
		}
		tokens := append([]string{g.Name, string(g.Variant)}, tagNames(g.Tags)...)
		if !matchesAny(q, tokens...) {
			continue
		}
		out = append(out, g)
	}
	SortByName(out, func(g query.GlazeResponse) string { return g.Name })
	return out
}

// Combos keeps the combos matching the filters, newest first. Nothing is
// returned unless a search or filter is active. Tokens are the name, the
// notes and tag names.
func Combos(combos []query.ComboResponse, s State) []query.ComboResponse {
	out := make([]query.ComboResponse, 0, len(combos))
	if !ShouldIncludeCombos(s) {
		return out
	}
	q := NormalizeQuery(s.Query)
	for _, c := range combos {
		if !hasAllTags(s.Tags, c.Tags) {
			continue
		}
		tokens := append([]string{c.Name, c.Notes}, tagNames(c.Tags)...)
		if !matchesAny(q, tokens...) {
			continue
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, format.PrioritizeMostRecent[query.ComboResponse])
	return out
}

// Pieces filters the piece list screen, newest first. A piece carries the
// tags of its glazes and combos as well as its own, and matches on their
// names.
func Pieces(pieces []query.PieceResponse, s State) []query.PieceResponse {
	q := NormalizeQuery(s.Query)
	out := make([]query.PieceResponse, 0, len(pieces))
	for _, p := range pieces {
		tags := inheritedTags(p)
		if !hasAllTags(s.Tags, tags...) {
			continue
		}
		tokens := []string{p.Name, p.Notes}
		for _, g := range p.Glazes {
			tokens = append(tokens, g.Name)
		}
		for _, c := range p.Combos {
			tokens = append(tokens, c.Name)
		}
		tokens = append(tokens, tagNames(tags...)...)
		if !matchesAny(q, tokens...) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, format.PrioritizeMostRecent[query.PieceResponse])
	return out
}

func inheritedTags(p query.PieceResponse) [][]domain.Tag {
	sets := [][]domain.Tag{p.Tags}
	for _, c := range p.Combos {
		sets = append(sets, c.Tags)
	}
	for _, g := range p.Glazes {
		sets = append(sets, g.Tags)
	}
	return sets
}

// Favorites filters favorited pieces by their own tags, name and notes.
// Combos are ordered newest first and glazes by name; the filters do not
// apply to them.
func Favorites(view query.Favorites, s State) query.Favorites {
	q := NormalizeQuery(s.Query)
	out := query.Favorites{
		Pieces: make([]query.PieceResponse, 0, len(view.Pieces)),
		Combos: slices.Clone(view.Combos),
		Glazes: slices.Clone(view.Glazes),
	}
	if out.Combos == nil {
		out.Combos = []query.ComboResponse{}
	}
	if out.Glazes == nil {
		out.Glazes = []query.GlazeResponse{}
	}
	for _, p := range view.Pieces {
		if !hasAllTags(s.Tags, p.Tags) {
			continue
		}
		tokens := append([]string{p.Name, p.Notes}, tagNames(p.Tags)...)
		if !matchesAny(q, tokens...) {
			continue
		}
		out.Pieces = append(out.Pieces, p)
	}
	slices.SortStableFunc(out.Pieces, format.PrioritizeMostRecent[query.PieceResponse])
	slices.SortStableFunc(out.Combos, format.PrioritizeMostRecent[query.ComboResponse])
	SortByName(out.Glazes, func(g query.GlazeResponse) string { return g.Name })
	return out
}

// SortByName sorts items in place by name using locale collation.
func SortByName[T any](items []T, name func(T) string) {
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(name(a), name(b))
	})
}
