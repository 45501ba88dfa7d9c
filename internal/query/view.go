// Package query maps named view contexts to nested store fetches and
// normalizes the fetched graph into typed view objects.
package query

import (
	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/store"
)

// View names a screen or picker context with a fixed fetch shape.
type View string

// View contexts.
const (
	ViewGlazesBrowse     View = "glazes-browse"
	ViewPiecesBrowse     View = "pieces-browse"
	ViewFavorites        View = "favorites"
	ViewGlazeDetail      View = "glaze-detail"
	ViewComboDetail      View = "combo-detail"
	ViewPieceDetail      View = "piece-detail"
	ViewGlazeEdit        View = "glaze-edit"
	ViewComboEdit        View = "combo-edit"
	ViewPieceEdit        View = "piece-edit"
	ViewGlazePicker      View = "glaze-picker"
	ViewGlazeComboPicker View = "glaze-combo-picker"
	ViewTagPicker        View = "tag-picker"
	ViewBrandPicker      View = "brand-picker"
)

// Params carries the view's subject. ID is required by detail and edit views.
type Params struct {
	ID string
}

// NeedsID reports whether the view is scoped to a single record.
func (v View) NeedsID() bool {
	switch v {
	case ViewGlazeDetail, ViewComboDetail, ViewPieceDetail,
		ViewGlazeEdit, ViewComboEdit, ViewPieceEdit:
		return true
	default:
		return false
	}
}

// include builds a Select that pulls in the given relations with no
// further nesting.
func include(labels ...string) *store.Select {
	sel := &store.Select{Include: make(map[string]*store.Select, len(labels))}
	for _, l := range labels {
		sel.Include[l] = &store.Select{}
	}
	return sel
}

// with adds a nested select under label and returns sel.
func (b selectBuilder) with(label string, child *store.Select) selectBuilder {
	b.Include[label] = child
	return b
}

type selectBuilder struct{ *store.Select }

func shape(labels ...string) selectBuilder {
	return selectBuilder{include(labels...)}
}

func where(sel selectBuilder, key string, value any) *store.Select {
	if sel.Where == nil {
		sel.Where = make(map[string]any)
	}
	sel.Where[key] = value
	return sel.Select
}

// comboShape is combos{applications{glazes}} plus extra relations.
func comboShape(extra ...string) selectBuilder {
	return shape(extra...).with("applications", include("glazes"))
}

// Compose returns the nested fetch for view.
func Compose(view View, params Params) (store.Query, error) {
	if view.NeedsID() && params.ID == "" {
		return store.Query{}, domainerrors.Validationf("view %s needs a record id", view)
	}

	roots := make(map[domain.Kind]*store.Select)
	switch view {
	case ViewGlazesBrowse:
		roots[domain.KindGlazes] = include("brands", "tags")
		roots[domain.KindCombos] = comboShape("tags").Select
		roots[domain.KindTags] = &store.Select{}

	case ViewPiecesBrowse:
		roots[domain.KindPieces] = shape("images", "tags").
			with("glazes", include("tags")).
			with("combos", include("tags")).Select

	case ViewFavorites:
		roots[domain.KindPieces] = where(shape("tags"), domain.AttrIsFavorite, true)
		roots[domain.KindCombos] = where(comboShape("tags"), domain.AttrIsFavorite, true)
		roots[domain.KindGlazes] = where(shape("tags"), domain.AttrIsFavorite, true)

	case ViewGlazeDetail:
		roots[domain.KindGlazes] = where(shape("brands", "pieces", "images", "tags"), domain.AttrID, params.ID)
		roots[domain.KindCombos] = where(comboShape(), "applications.glazes.id", params.ID)

	case ViewComboDetail:
		roots[domain.KindCombos] = where(comboShape("images", "tags", "pieces"), domain.AttrID, params.ID)

	case ViewPieceDetail:
		roots[domain.KindPieces] = where(partsShape("images", "tags"), domain.AttrID, params.ID)

	case ViewGlazeEdit:
		roots[domain.KindGlazes] = where(shape("brands", "applications", "parts"), domain.AttrID, params.ID)

	case ViewComboEdit:
		roots[domain.KindCombos] = where(comboShape(), domain.AttrID, params.ID)

	case ViewPieceEdit:
		roots[domain.KindPieces] = where(partsShape(), domain.AttrID, params.ID)

	case ViewGlazePicker:
		roots[domain.KindGlazes] = &store.Select{}

	case ViewGlazeComboPicker:
		roots[domain.KindGlazes] = &store.Select{}
		roots[domain.KindCombos] = comboShape().Select

	case ViewTagPicker:
		roots[domain.KindTags] = &store.Select{}

	case ViewBrandPicker:
		roots[domain.KindBrands] = &store.Select{}

	default:
		return store.Query{}, domainerrors.Validationf("unknown view %q", view)
	}

	return store.Query{Roots: roots}, nil
}

// partsShape is pieces{parts{glazes, combos{applications{glazes}}}} plus extras.
func partsShape(extra ...string) selectBuilder {
	return shape(extra...).with("parts", shape("glazes").with("combos", comboShape().Select).Select)
}
