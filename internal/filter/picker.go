package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/format"
	"github.com/glazepal/glazepal/internal/query"
)

// PickGlazes filters the glaze picker by name. The suggested glaze comes
// first, the rest by name.
func PickGlazes(glazes []query.GlazeResponse, rawQuery, suggestedID string) []query.GlazeResponse {
	q := NormalizeQuery(rawQuery)
	out := make([]query.GlazeResponse, 0, len(glazes))
	for _, g := range glazes {
		if matchesAny(q, g.Name) {
			out = append(out, g)
		}
	}
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(out, suggestedFirst(suggestedID, func(g query.GlazeResponse) string { return g.ID },
		func(a, b query.GlazeResponse) int { return c.CompareString(a.Name, b.Name) }))
	return out
}

// PickCombos filters the combo picker over the name, description and layer
// glaze names. The suggested combo comes first, the rest newest first.
func PickCombos(combos []query.ComboResponse, rawQuery, suggestedID string) []query.ComboResponse {
	q := NormalizeQuery(rawQuery)
	out := make([]query.ComboResponse, 0, len(combos))
	for _, c := range combos {
		if q == "" || strings.Contains(lower(comboSearchText(c)), q) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, suggestedFirst(suggestedID, func(c query.ComboResponse) string { return c.ID },
		format.PrioritizeMostRecent[query.ComboResponse]))
	return out
}

// comboSearchText joins the combo's searchable fields with spaces so a
// query may span the name and a glaze name.
func comboSearchText(c query.ComboResponse) string {
	parts := make([]string, 0, len(c.Applications)+2)
	for _, s := range append([]string{c.Name, c.Description}, c.GlazeNames()...) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// PickGlazeOrCombo filters both arms of the part picker.
func PickGlazeOrCombo(view query.GlazeComboPicker, rawQuery string, suggested query.GlazePart) query.GlazeComboPicker {
	var glazeID, comboID string
	switch p := suggested.(type) {
	case query.GlazeSelection:
		glazeID = p.Glaze.ID
	case query.ComboSelection:
		comboID = p.Combo.ID
	}
	return query.GlazeComboPicker{
		Glazes: PickGlazes(view.Glazes, rawQuery, glazeID),
		Combos: PickCombos(view.Combos, rawQuery, comboID),
	}
}

// Tags orders tags by rank.
func Tags(tags []domain.Tag) []domain.Tag {
	out := slices.Clone(tags)
	if out == nil {
		out = []domain.Tag{}
	}
	slices.SortStableFunc(out, func(a, b domain.Tag) int { return a.Rank - b.Rank })
	return out
}

// Brands orders brands by name.
func Brands(brands []domain.Brand) []domain.Brand {
	out := slices.Clone(brands)
	if out == nil {
		out = []domain.Brand{}
	}
	SortByName(out, func(b domain.Brand) string { return b.Name })
	return out
}

func suggestedFirst[T any](suggestedID string, idOf func(T) string, rest func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		if suggestedID != "" {
			aFirst, bFirst := idOf(a) == suggestedID, idOf(b) == suggestedID
			switch {
			case aFirst && !bFirst:
				return -1
			case bFirst && !aFirst:
				return 1
			}
		}
		return rest(a, b)
	}
}
