// Package filter applies search text, variant and tag filters to
// normalized catalog views and orders the results for display.
package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/format"
)

// VariantAll disables the variant filter. The zero value does the same.
const VariantAll domain.Variant = "all"

// State is the filter state of a list screen.
type State struct {
	Query   string         `json:"query"`
	Variant domain.Variant `json:"variant,omitempty"`
	Tags    []domain.Tag   `json:"tags"`
}

// ItemType says what an active filter chip removes.
type ItemType string

// Filter chip types.
const (
	ItemVariant ItemType = "variant"
	ItemTag     ItemType = "tag"
)

// Item is one active filter chip.
type Item struct {
	Type  ItemType `json:"type"`
	Label string   `json:"label"`
	Value string   `json:"value"`
}

// NormalizeQuery trims and lower-cases raw search input.
func NormalizeQuery(q string) string {
	return lower(strings.TrimSpace(q))
}

func lower(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// HasQuery reports whether a non-blank search query is set.
func (s State) HasQuery() bool {
	return NormalizeQuery(s.Query) != ""
}

// FiltersVariant reports whether a specific variant is selected.
func (s State) FiltersVariant() bool {
	return s.Variant.Valid()
}

// Items returns the active filter chips: the variant first, then tags in
// the order they were chosen.
func Items(s State) []Item {
	items := make([]Item, 0, len(s.Tags)+1)
	if s.FiltersVariant() {
		items = append(items, Item{Type: ItemVariant, Label: format.VariantFilterLabel(s.Variant), Value: string(s.Variant)})
	}
	for _, t := range s.Tags {
		items = append(items, Item{Type: ItemTag, Label: t.Name, Value: t.ID})
	}
	return items
}

// Remove returns a copy of s without the filter behind item.
func (s State) Remove(item Item) State {
	out := s
	switch item.Type {
	case ItemVariant:
		out.Variant = VariantAll
	case ItemTag:
		out.Tags = slices.DeleteFunc(slices.Clone(s.Tags), func(t domain.Tag) bool {
			return t.ID == item.Value
		})
	}
	return out
}

// ShouldIncludeCombos reports whether combos belong in the glaze list.
// They are only shown while searching or filtering.
func ShouldIncludeCombos(s State) bool {
	return s.HasQuery() || len(Items(s)) > 0
}

// hasAllTags reports whether every filter tag is among have, by id.
func hasAllTags(filter []domain.Tag, have ...[]domain.Tag) bool {
	for _, want := range filter {
		found := false
		for _, set := range have {
			if slices.ContainsFunc(set, func(t domain.Tag) bool { return t.ID == want.ID }) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchesAny reports whether any non-empty token contains q. An empty q
// matches everything.
func matchesAny(q string, tokens ...string) bool {
	if q == "" {
		return true
	}
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower(tok), q) {
			return true
		}
	}
	return false
}

func tagNames(sets ...[]domain.Tag) []string {
	var names []string
	for _, set := range sets {
		for _, t := range set {
			names = append(names, t.Name)
		}
	}
	return names
}
