package service

import (
	"context"
	"slices"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/filter"
	"github.com/glazepal/glazepal/internal/format"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/search"
)

// GlazesPage is the glaze list screen after filtering.
type GlazesPage struct {
	filter.GlazeResults
	// Tags offered in the filter sheet, by rank.
	Tags []domain.Tag `json:"tags"`
	// Active filters shown as removable chips.
	Filters []filter.Item `json:"filters"`
}

// Glazes returns the glaze list screen.
func (c *Catalog) Glazes(ctx context.Context, state filter.State) (GlazesPage, error) {
	view, err := query.Load(ctx, c.store, query.ViewGlazesBrowse, query.Params{}, query.DecodeGlazesBrowse)
	if err != nil {
		return GlazesPage{}, loadError(err)
	}
	return GlazesPage{
		GlazeResults: filter.GlazesBrowse(view, state),
		Tags:         filter.Tags(view.Tags),
		Filters:      filter.Items(state),
	}, nil
}

// Pieces returns the piece list screen, newest first.
func (c *Catalog) Pieces(ctx context.Context, state filter.State) ([]query.PieceResponse, error) {
	view, err := query.Load(ctx, c.store, query.ViewPiecesBrowse, query.Params{}, query.DecodePiecesBrowse)
	if err != nil {
		return nil, loadError(err)
	}
	return filter.Pieces(view.Pieces, state), nil
}

// Favorites returns the favorites screen.
func (c *Catalog) Favorites(ctx context.Context, state filter.State) (query.Favorites, error) {
	view, err := query.Load(ctx, c.store, query.ViewFavorites, query.Params{}, query.DecodeFavorites)
	if err != nil {
		return query.Favorites{}, loadError(err)
	}
	return filter.Favorites(view, state), nil
}

// Glaze returns a glaze's detail screen. Its combos are newest first.
func (c *Catalog) Glaze(ctx context.Context, glazeID string) (query.GlazeDetail, error) {
	view, err := query.Load(ctx, c.store, query.ViewGlazeDetail, query.Params{ID: glazeID}, query.DecodeGlazeDetail)
	if err != nil {
		return query.GlazeDetail{}, loadError(err)
	}
	slices.SortStableFunc(view.Combos, format.PrioritizeMostRecent[query.ComboResponse])
	return view, nil
}

// Combo returns a combo's detail screen.
func (c *Catalog) Combo(ctx context.Context, comboID string) (query.ComboDetail, error) {
	view, err := query.Load(ctx, c.store, query.ViewComboDetail, query.Params{ID: comboID}, query.DecodeComboDetail)
	return view, loadError(err)
}

// Piece returns a piece's detail screen.
func (c *Catalog) Piece(ctx context.Context, pieceID string) (query.PieceDetail, error) {
	view, err := query.Load(ctx, c.store, query.ViewPieceDetail, query.Params{ID: pieceID}, query.DecodePieceDetail)
	return view, loadError(err)
}

// PickGlaze lists the glazes selectable for a combo layer.
func (c *Catalog) PickGlaze(ctx context.Context, rawQuery, suggestedID string) ([]query.GlazeResponse, error) {
	glazes, err := query.Load(ctx, c.store, query.ViewGlazePicker, query.Params{}, query.DecodeGlazes)
	if err != nil {
		return nil, loadError(err)
	}
	return filter.PickGlazes(glazes, rawQuery, suggestedID), nil
}

// PickGlazeOrCombo lists the glazes and combos selectable for a piece part.
func (c *Catalog) PickGlazeOrCombo(ctx context.Context, rawQuery string, suggested query.GlazePart) (query.GlazeComboPicker, error) {
	view, err := query.Load(ctx, c.store, query.ViewGlazeComboPicker, query.Params{}, query.DecodeGlazeComboPicker)
	if err != nil {
		return query.GlazeComboPicker{}, loadError(err)
	}
	return filter.PickGlazeOrCombo(view, rawQuery, suggested), nil
}

// Tags lists every tag by rank.
func (c *Catalog) Tags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := query.Load(ctx, c.store, query.ViewTagPicker, query.Params{}, query.DecodeTags)
	if err != nil {
		return nil, loadError(err)
	}
	return filter.Tags(tags), nil
}

// Brands lists every brand by name.
func (c *Catalog) Brands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := query.Load(ctx, c.store, query.ViewBrandPicker, query.Params{}, query.DecodeBrands)
	if err != nil {
		return nil, loadError(err)
	}
	return filter.Brands(brands), nil
}

// Search runs a full-text search over glazes, combos and pieces.
func (c *Catalog) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	if c.searcher == nil {
		return nil, domainerrors.Validation("Search is not enabled")
	}
	res, err := c.searcher.Search(ctx, params)
	return res, loadError(err)
}
