package planner

import (
	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/tx"
)

func (p *Planner) validatePiece(in PieceInput) error {
	if err := p.validate.Validate(in); err != nil {
		return err
	}
	for _, part := range in.slots() {
		field := string(part.PartLocation())
		switch sel := part.(type) {
		case query.GlazeSelection:
			if err := requireID(domain.KindGlazes, sel.Glaze.ID); err != nil {
				return err
			}
			if err := layerError(field+".layers", sel.Glaze, partLayers(sel)); err != nil {
				return err
			}
		case query.ComboSelection:
			if err := requireID(domain.KindCombos, sel.Combo.ID); err != nil {
				return err
			}
		default:
			return domainerrors.Validationf("%s has no glaze or combo", field)
		}
	}
	return nil
}

func partLayers(sel query.GlazeSelection) int {
	if sel.Layers == 0 {
		return 1
	}
	return sel.Layers
}

// CreatePiece plans a new piece with its first image and a part per
// covered location. The image and the outer selection are required.
func (p *Planner) CreatePiece(in PieceInput) (*Plan, error) {
	if in.Image == nil || in.Outer == nil {
		return nil, domainerrors.Validation("Please fill in all required fields")
	}
	if err := p.validatePiece(in); err != nil {
		return nil, err
	}

	pieceID := p.ids.NewID()
	imageID := p.ids.NewID()
	b := tx.New().
		Create(domain.KindImages, imageID, p.imageAttrs(*in.Image)).
		Create(domain.KindPieces, pieceID, p.created(tx.Attrs{
			domain.AttrName:            in.Name,
			domain.AttrNotes:           in.Notes,
			domain.AttrDefaultImageURI: in.Image.URI(),
		})).
		Link(domain.KindPieces, pieceID, "images", imageID)

	p.createParts(b, pieceID, in.slots())
	return &Plan{ID: pieceID, Batch: b}, nil
}

// UpdatePiece replaces every part of current with fresh parts built from
// the form. Old parts are deleted and their glazes and combos unlinked from
// the piece before the new ones are linked.
func (p *Planner) UpdatePiece(current query.PieceResponse, in PieceInput) (*Plan, error) {
	if err := requireID(domain.KindPieces, current.ID); err != nil {
		return nil, err
	}
	if in.Outer == nil {
		return nil, domainerrors.Validation("Please fill in all required fields")
	}
	if err := p.validatePiece(in); err != nil {
		return nil, err
	}

	b := tx.New().Update(domain.KindPieces, current.ID, p.touched(tx.Attrs{}))
	for _, part := range current.Parts {
		b.Delete(domain.KindParts, part.ID)
		for _, g := range part.Glazes {
			b.Unlink(domain.KindGlazes, g.ID, "pieces", current.ID)
		}
		for _, c := range part.Combos {
			b.Unlink(domain.KindCombos, c.ID, "pieces", current.ID)
		}
	}

	p.createParts(b, current.ID, in.slots())
	return &Plan{ID: current.ID, Batch: b}, nil
}

func (p *Planner) createParts(b *tx.Batch, pieceID string, parts []query.GlazePart) {
	for _, part := range parts {
		partID := p.ids.NewID()
		switch sel := part.(type) {
		case query.GlazeSelection:
			b.Create(domain.KindParts, partID, p.created(tx.Attrs{
				domain.AttrType:     string(domain.PartTypeGlaze),
				domain.AttrLocation: string(sel.Location),
				domain.AttrLayers:   partLayers(sel),
			}))
			b.Link(domain.KindParts, partID, "glazes", sel.Glaze.ID)
			b.Link(domain.KindPieces, pieceID, "parts", partID)
			b.Link(domain.KindGlazes, sel.Glaze.ID, "pieces", pieceID)
		case query.ComboSelection:
			b.Create(domain.KindParts, partID, p.created(tx.Attrs{
				domain.AttrType:     string(domain.PartTypeCombo),
				domain.AttrLocation: string(sel.Location),
			}))
			b.Link(domain.KindParts, partID, "combos", sel.Combo.ID)
			b.Link(domain.KindPieces, pieceID, "parts", partID)
			b.Link(domain.KindCombos, sel.Combo.ID, "pieces", pieceID)
		}
	}
}
