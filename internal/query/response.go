package query

import (
	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/store"
)

// GlazeResponse is a glaze with its fetched relations. Relations the
// view did not include are empty slices.
type GlazeResponse struct {
	domain.Glaze
	Brands       []domain.Brand            `json:"brands"`
	Tags         []domain.Tag              `json:"tags"`
	Images       []domain.Image            `json:"images"`
	Pieces       []domain.Piece            `json:"pieces"`
	Applications []domain.GlazeApplication `json:"applications"`
	Parts        []domain.PiecePart        `json:"parts"`
}

// Brand returns the glaze's brand, if one is linked.
func (g GlazeResponse) Brand() (domain.Brand, bool) {
	if len(g.Brands) == 0 {
		return domain.Brand{}, false
	}
	return g.Brands[0], true
}

// ApplicationResponse is a glaze application with its glaze.
type ApplicationResponse struct {
	domain.GlazeApplication
	Glazes []domain.Glaze `json:"glazes"`
}

// Glaze returns the applied glaze; false when the edge is missing.
func (a ApplicationResponse) Glaze() (domain.Glaze, bool) {
	if len(a.Glazes) == 0 {
		return domain.Glaze{}, false
	}
	return a.Glazes[0], true
}

// ComboResponse is a combo with its applications and other relations.
type ComboResponse struct {
	domain.Combo
	Applications []ApplicationResponse `json:"applications"`
	Tags         []domain.Tag          `json:"tags"`
	Images       []domain.Image        `json:"images"`
	Pieces       []domain.Piece        `json:"pieces"`
}

// Base returns the first application flagged as base that resolves to a glaze.
func (c ComboResponse) Base() (ApplicationResponse, bool) {
	return c.firstApplication(true)
}

// Additional returns the first non-base application that resolves to a glaze.
func (c ComboResponse) Additional() (ApplicationResponse, bool) {
	return c.firstApplication(false)
}

func (c ComboResponse) firstApplication(isBase bool) (ApplicationResponse, bool) {
	for _, a := range c.Applications {
		if a.IsBase == isBase && len(a.Glazes) > 0 {
			return a, true
		}
	}
	return ApplicationResponse{}, false
}

// GlazeNames returns the names of every resolvable layer glaze in
// application order.
func (c ComboResponse) GlazeNames() []string {
	names := make([]string, 0, len(c.Applications))
	for _, a := range c.Applications {
		if g, ok := a.Glaze(); ok {
			names = append(names, g.Name)
		}
	}
	return names
}

// PiecePartResponse is a piece part with its glaze or combo.
type PiecePartResponse struct {
	domain.PiecePart
	Glazes []GlazeResponse `json:"glazes"`
	Combos []ComboResponse `json:"combos"`
}

// Selection converts the part into a GlazePart. False when the part's
// glaze or combo no longer exists.
func (p PiecePartResponse) Selection() (GlazePart, bool) {
	switch p.Type {
	case domain.PartTypeGlaze:
		if len(p.Glazes) == 0 {
			return nil, false
		}
		return GlazeSelection{Location: p.Location, Layers: max(p.Layers, 1), Glaze: p.Glazes[0].Glaze}, true
	case domain.PartTypeCombo:
		if len(p.Combos) == 0 {
			return nil, false
		}
		return ComboSelection{Location: p.Location, Combo: p.Combos[0]}, true
	default:
		return nil, false
	}
}

// PieceResponse is a piece with its parts and other relations.
type PieceResponse struct {
	domain.Piece
	Parts  []PiecePartResponse `json:"parts"`
	Glazes []GlazeResponse     `json:"glazes"`
	Combos []ComboResponse     `json:"combos"`
	Images []domain.Image      `json:"images"`
	Tags   []domain.Tag        `json:"tags"`
}

// Part returns the selection stored at location.
func (p PieceResponse) Part(location domain.Location) (GlazePart, bool) {
	for _, part := range p.Parts {
		if part.Location != location {
			continue
		}
		if sel, ok := part.Selection(); ok {
			return sel, true
		}
	}
	return nil, false
}

// Outer returns the outer selection.
func (p PieceResponse) Outer() (GlazePart, bool) {
	return p.Part(domain.LocationOuter)
}

// Inner returns the inner selection. A uniform piece stores no inner part,
// so its inner view is the outer selection relocated.
func (p PieceResponse) Inner() (GlazePart, bool) {
	if inner, ok := p.Part(domain.LocationInner); ok {
		return inner, true
	}
	outer, ok := p.Outer()
	if !ok {
		return nil, false
	}
	return Relocate(outer, domain.LocationInner), true
}

// IsUniform reports whether the piece has no distinct inner part.
func (p PieceResponse) IsUniform() bool {
	_, ok := p.Part(domain.LocationInner)
	return !ok
}

// decodeRecord decodes obj's attributes into a T.
func decodeRecord[T any](obj *store.Object) (T, error) {
	var v T
	err := obj.Decode(&v)
	return v, err
}

// decodeAll applies fn to every object. The result is never nil.
func decodeAll[T any](objs []*store.Object, fn func(*store.Object) (T, error)) ([]T, error) {
	out := make([]T, 0, len(objs))
	for _, obj := range objs {
		v, err := fn(obj)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeGlaze(obj *store.Object) (GlazeResponse, error) {
	var (
		g   GlazeResponse
		err error
	)
	if g.Glaze, err = decodeRecord[domain.Glaze](obj); err != nil {
		return g, err
	}
	if g.Brands, err = decodeAll(obj.Related("brands"), decodeRecord[domain.Brand]); err != nil {
		return g, err
	}
	if g.Tags, err = decodeAll(obj.Related("tags"), decodeRecord[domain.Tag]); err != nil {
		return g, err
	}
	if g.Images, err = decodeAll(obj.Related("images"), decodeRecord[domain.Image]); err != nil {
		return g, err
	}
	if g.Pieces, err = decodeAll(obj.Related("pieces"), decodeRecord[domain.Piece]); err != nil {
		return g, err
	}
	if g.Applications, err = decodeAll(obj.Related("applications"), decodeRecord[domain.GlazeApplication]); err != nil {
		return g, err
	}
	g.Parts, err = decodeAll(obj.Related("parts"), decodeRecord[domain.PiecePart])
	return g, err
}

func decodeApplication(obj *store.Object) (ApplicationResponse, error) {
	var (
		a   ApplicationResponse
		err error
	)
	if a.GlazeApplication, err = decodeRecord[domain.GlazeApplication](obj); err != nil {
		return a, err
	}
	a.Glazes, err = decodeAll(obj.Related("glazes"), decodeRecord[domain.Glaze])
	return a, err
}

func decodeCombo(obj *store.Object) (ComboResponse, error) {
	var (
		c   ComboResponse
		err error
	)
	if c.Combo, err = decodeRecord[domain.Combo](obj); err != nil {
		return c, err
	}
	if c.Applications, err = decodeAll(obj.Related("applications"), decodeApplication); err != nil {
		return c, err
	}
	if c.Tags, err = decodeAll(obj.Related("tags"), decodeRecord[domain.Tag]); err != nil {
		return c, err
	}
	if c.Images, err = decodeAll(obj.Related("images"), decodeRecord[domain.Image]); err != nil {
		return c, err
	}
	c.Pieces, err = decodeAll(obj.Related("pieces"), decodeRecord[domain.Piece])
	return c, err
}

func decodePart(obj *store.Object) (PiecePartResponse, error) {
	var (
		p   PiecePartResponse
		err error
	)
	if p.PiecePart, err = decodeRecord[domain.PiecePart](obj); err != nil {
		return p, err
	}
	if p.Glazes, err = decodeAll(obj.Related("glazes"), decodeGlaze); err != nil {
		return p, err
	}
	p.Combos, err = decodeAll(obj.Related("combos"), decodeCombo)
	return p, err
}

func decodePiece(obj *store.Object) (PieceResponse, error) {
	var (
		p   PieceResponse
		err error
	)
	if p.Piece, err = decodeRecord[domain.Piece](obj); err != nil {
		return p, err
	}
	if p.Parts, err = decodeAll(obj.Related("parts"), decodePart); err != nil {
		return p, err
	}
	if p.Glazes, err = decodeAll(obj.Related("glazes"), decodeGlaze); err != nil {
		return p, err
	}
	if p.Combos, err = decodeAll(obj.Related("combos"), decodeCombo); err != nil {
		return p, err
	}
	if p.Images, err = decodeAll(obj.Related("images"), decodeRecord[domain.Image]); err != nil {
		return p, err
	}
	p.Tags, err = decodeAll(obj.Related("tags"), decodeRecord[domain.Tag])
	return p, err
}
