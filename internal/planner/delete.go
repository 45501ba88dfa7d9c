package planner

import (
	"fmt"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/query"
	"github.com/glazepal/glazepal/internal/tx"
)

// DeleteGlaze plans deleting a glaze with its images and the inner piece
// parts that use it. current must carry the glaze's applications and
// parts. A glaze that is a combo layer or covers the outside of a piece
// cannot be deleted.
func (p *Planner) DeleteGlaze(current query.GlazeResponse, deps Dependents) (*Plan, error) {
	if err := requireID(domain.KindGlazes, current.ID); err != nil {
		return nil, err
	}
	if n := len(current.Applications); n > 0 {
		return nil, domainerrors.ValidationWithDetails(
			"This glaze is used in a combo",
			map[string]string{"applications": fmt.Sprintf("remove it from %d combo layers first", n)},
		)
	}
	parts := make([]string, 0, len(current.Parts))
	for _, part := range current.Parts {
		if part.Location != domain.LocationInner {
			return nil, domainerrors.ValidationWithDetails(
				"This glaze covers the outside of a piece",
				map[string]string{"parts": "choose another outside glaze for the piece first"},
			)
		}
		parts = append(parts, part.ID)
	}
	return p.deleteWith(domain.KindGlazes, current.ID, Dependents{Images: deps.Images, Parts: parts})
}

// DeleteCombo plans deleting a combo with its applications, images and
// the piece parts that use it.
func (p *Planner) DeleteCombo(comboID string, deps Dependents) (*Plan, error) {
	return p.deleteWith(domain.KindCombos, comboID, deps)
}

// DeletePiece plans deleting a piece with its parts and images.
func (p *Planner) DeletePiece(pieceID string, deps Dependents) (*Plan, error) {
	return p.deleteWith(domain.KindPieces, pieceID, Dependents{Images: deps.Images, Parts: deps.Parts})
}

func (p *Planner) deleteWith(kind domain.Kind, recordID string, deps Dependents) (*Plan, error) {
	if err := requireID(kind, recordID); err != nil {
		return nil, err
	}
	b := tx.New()
	for _, partID := range deps.Parts {
		b.Delete(domain.KindParts, partID)
	}
	for _, appID := range deps.Applications {
		b.Delete(domain.KindApplications, appID)
	}
	for _, imageID := range deps.Images {
		b.Delete(domain.KindImages, imageID)
	}
	b.Delete(kind, recordID)
	return &Plan{ID: recordID, Batch: b}, nil
}
