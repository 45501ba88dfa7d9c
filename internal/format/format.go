// Package format renders catalog records as display strings.
package format

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/query"
)

// GlazeVariant returns the display name of a variant. Unknown values are
// returned as-is.
func GlazeVariant(v domain.Variant) string {
	switch v {
	case domain.VariantBrush:
		return "Brushing"
	case domain.VariantDip:
		return "Dipping"
	default:
		return string(v)
	}
}

// VariantFilterLabel is the chip label for an active variant filter.
func VariantFilterLabel(v domain.Variant) string {
	return GlazeVariant(v) + " glaze"
}

// Layers renders a layer count as "2x".
func Layers(n int) string {
	return strconv.Itoa(n) + "x"
}

// Layer is one glaze of a combo being edited, with its layer count.
type Layer struct {
	Glaze  domain.Glaze
	Layers int
}

// Names is a generated combo name and description.
type Names struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// layerLabel renders "Name" for a single layer and "Name 2x" otherwise.
func layerLabel(name string, layers int) string {
	if layers == 1 {
		return name
	}
	return name + " " + Layers(layers)
}

// GlazeApplications derives a combo's name and description from its
// layers in the given order: "Lotta/Khalil 2x" and "Lotta, Khalil 2x".
func GlazeApplications(layers []Layer) Names {
	labels := make([]string, 0, len(layers))
	for _, l := range layers {
		labels = append(labels, layerLabel(l.Glaze.Name, l.Layers))
	}
	return Names{
		Name:        strings.Join(labels, "/"),
		Description: strings.Join(labels, ", "),
	}
}

// GlazeCombo renders a fetched combo with the base layer first:
// "Lotta + Khalil 2x" and "Lotta, Khalil 2x". Applications whose glaze is
// missing are left out. The combo is not modified.
func GlazeCombo(combo query.ComboResponse) Names {
	apps := slices.Clone(combo.Applications)
	slices.SortStableFunc(apps, func(a, b query.ApplicationResponse) int {
		switch {
		case a.IsBase == b.IsBase:
			return 0
		case a.IsBase:
			return -1
		default:
			return 1
		}
	})

	labels := make([]string, 0, len(apps))
	for _, a := range apps {
		g, ok := a.Glaze()
		if !ok || g.Name == "" {
			continue
		}
		labels = append(labels, layerLabel(g.Name, a.Layers))
	}
	return Names{
		Name:        strings.Join(labels, " + "),
		Description: strings.Join(labels, ", "),
	}
}

// ComboName is the combo's generated name, falling back to its stored name
// when none of its glazes resolve.
func ComboName(combo query.ComboResponse) string {
	if n := GlazeCombo(combo).Name; n != "" {
		return n
	}
	return combo.Name
}

// GlazePart renders what covers a piece location.
func GlazePart(part query.GlazePart) string {
	switch p := part.(type) {
	case query.GlazeSelection:
		return layerLabel(p.Glaze.Name, max(p.Layers, 1))
	case query.ComboSelection:
		return ComboName(p.Combo)
	default:
		return ""
	}
}

// Recent is anything with a recency instant, which every record has.
type Recent interface {
	Recency() int64
}

// PrioritizeMostRecent orders records newest first by updatedAt, then
// createdAt. Equal instants compare as 0.
func PrioritizeMostRecent[T Recent](a, b T) int {
	return cmp.Compare(b.Recency(), a.Recency())
}
