package query

import (
	"context"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/store"
)

// Querier runs a composed fetch.
type Querier interface {
	Query(ctx context.Context, q store.Query) (*store.Graph, error)
}

// GlazesBrowse is the glaze list screen: every glaze and combo plus the
// tags offered as filters.
type GlazesBrowse struct {
	Glazes []GlazeResponse `json:"glazes"`
	Combos []ComboResponse `json:"combos"`
	Tags   []domain.Tag    `json:"tags"`
}

// PiecesBrowse is the piece list screen.
type PiecesBrowse struct {
	Pieces []PieceResponse `json:"pieces"`
}

// Favorites holds every favorited piece, combo and glaze.
type Favorites struct {
	Pieces []PieceResponse `json:"pieces"`
	Combos []ComboResponse `json:"combos"`
	Glazes []GlazeResponse `json:"glazes"`
}

// GlazeDetail is one glaze with the combos that use it.
type GlazeDetail struct {
	Glaze  GlazeResponse   `json:"glaze"`
	Combos []ComboResponse `json:"combos"`
}

// ComboDetail is one combo with its layers, images, tags and pieces.
type ComboDetail struct {
	Combo ComboResponse `json:"combo"`
}

// PieceDetail is one piece with its parts, images and tags.
type PieceDetail struct {
	Piece PieceResponse `json:"piece"`
}

// GlazeComboPicker lists what can be selected for a piece part.
type GlazeComboPicker struct {
	Glazes []GlazeResponse `json:"glazes"`
	Combos []ComboResponse `json:"combos"`
}

// Load composes view, runs it and decodes the graph with decode.
func Load[T any](ctx context.Context, q Querier, view View, params Params, decode func(*store.Graph) (T, error)) (T, error) {
	var zero T
	spec, err := Compose(view, params)
	if err != nil {
		return zero, err
	}
	graph, err := q.Query(ctx, spec)
	if err != nil {
		return zero, err
	}
	return decode(graph)
}

// DecodeGlazesBrowse normalizes a ViewGlazesBrowse graph.
func DecodeGlazesBrowse(g *store.Graph) (GlazesBrowse, error) {
	var (
		out GlazesBrowse
		err error
	)
	if out.Glazes, err = decodeAll(g.Root(domain.KindGlazes), decodeGlaze); err != nil {
		return out, err
	}
	if out.Combos, err = decodeAll(g.Root(domain.KindCombos), decodeCombo); err != nil {
		return out, err
	}
	out.Tags, err = DecodeTags(g)
	return out, err
}

// DecodePiecesBrowse normalizes a ViewPiecesBrowse graph.
func DecodePiecesBrowse(g *store.Graph) (PiecesBrowse, error) {
	pieces, err := decodeAll(g.Root(domain.KindPieces), decodePiece)
	return PiecesBrowse{Pieces: pieces}, err
}

// DecodeFavorites normalizes a ViewFavorites graph.
func DecodeFavorites(g *store.Graph) (Favorites, error) {
	var (
		out Favorites
		err error
	)
	if out.Pieces, err = decodeAll(g.Root(domain.KindPieces), decodePiece); err != nil {
		return out, err
	}
	if out.Combos, err = decodeAll(g.Root(domain.KindCombos), decodeCombo); err != nil {
		return out, err
	}
	out.Glazes, err = decodeAll(g.Root(domain.KindGlazes), decodeGlaze)
	return out, err
}

// DecodeGlazeDetail normalizes a ViewGlazeDetail graph. It returns a
// NOT_FOUND error when the glaze is absent.
func DecodeGlazeDetail(g *store.Graph) (GlazeDetail, error) {
	var out GlazeDetail
	glaze, err := DecodeGlaze(g)
	if err != nil {
		return out, err
	}
	out.Glaze = glaze
	out.Combos, err = decodeAll(g.Root(domain.KindCombos), decodeCombo)
	return out, err
}

// DecodeComboDetail normalizes a ViewComboDetail graph.
func DecodeComboDetail(g *store.Graph) (ComboDetail, error) {
	combo, err := DecodeCombo(g)
	return ComboDetail{Combo: combo}, err
}

// DecodePieceDetail normalizes a ViewPieceDetail graph.
func DecodePieceDetail(g *store.Graph) (PieceDetail, error) {
	piece, err := DecodePiece(g)
	return PieceDetail{Piece: piece}, err
}

// DecodeGlaze returns the single glaze of a detail or edit graph.
func DecodeGlaze(g *store.Graph) (GlazeResponse, error) {
	return decodeSubject(g, domain.KindGlazes, decodeGlaze)
}

// DecodeCombo returns the single combo of a detail or edit graph.
func DecodeCombo(g *store.Graph) (ComboResponse, error) {
	return decodeSubject(g, domain.KindCombos, decodeCombo)
}

// DecodePiece returns the single piece of a detail or edit graph.
func DecodePiece(g *store.Graph) (PieceResponse, error) {
	return decodeSubject(g, domain.KindPieces, decodePiece)
}

// DecodeGlazes normalizes every fetched glaze.
func DecodeGlazes(g *store.Graph) ([]GlazeResponse, error) {
	return decodeAll(g.Root(domain.KindGlazes), decodeGlaze)
}

// DecodeGlazeComboPicker normalizes a ViewGlazeComboPicker graph.
func DecodeGlazeComboPicker(g *store.Graph) (GlazeComboPicker, error) {
	var (
		out GlazeComboPicker
		err error
	)
	if out.Glazes, err = decodeAll(g.Root(domain.KindGlazes), decodeGlaze); err != nil {
		return out, err
	}
	out.Combos, err = decodeAll(g.Root(domain.KindCombos), decodeCombo)
	return out, err
}

// DecodeTags returns the fetched tags.
func DecodeTags(g *store.Graph) ([]domain.Tag, error) {
	return decodeAll(g.Root(domain.KindTags), decodeRecord[domain.Tag])
}

// DecodeBrands returns the fetched brands.
func DecodeBrands(g *store.Graph) ([]domain.Brand, error) {
	return decodeAll(g.Root(domain.KindBrands), decodeRecord[domain.Brand])
}

func decodeSubject[T any](g *store.Graph, kind domain.Kind, fn func(*store.Object) (T, error)) (T, error) {
	objs := g.Root(kind)
	if len(objs) == 0 {
		var zero T
		return zero, domainerrors.NotFoundf("%s not found", singular(kind))
	}
	return fn(objs[0])
}

func singular(kind domain.Kind) string {
	switch kind {
	case domain.KindGlazes:
		return "glaze"
	case domain.KindCombos:
		return "combo"
	case domain.KindPieces:
		return "piece"
	default:
		return string(kind)
	}
}
