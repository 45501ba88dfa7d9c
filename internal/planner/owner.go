package planner

import (
	"slices"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/tx"
)

func validOwner(o Owner) error {
	switch o.Kind {
	case domain.KindGlazes, domain.KindCombos, domain.KindPieces:
	default:
		return domainerrors.Validationf("%s cannot own images or tags", o.Kind)
	}
	return requireID(o.Kind, o.ID)
}

func (p *Planner) imageAttrs(in ImageInput) tx.Attrs {
	return p.created(tx.Attrs{
		domain.AttrURI:       in.URI(),
		domain.AttrCacheURI:  in.CacheURI,
		domain.AttrLocalURI:  in.LocalURI,
		domain.AttrPublicURI: in.PublicURI,
		domain.AttrBlurHash:  in.BlurHash,
	})
}

// AddImage plans attaching a new image to owner. The first image becomes
// the default. An image whose cache URI is already attached is ErrNoop.
func (p *Planner) AddImage(owner Owner, in ImageInput) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	if err := p.validate.Validate(in); err != nil {
		return nil, err
	}
	if slices.ContainsFunc(owner.Images, func(i domain.Image) bool { return i.CacheURI == in.CacheURI }) {
		return nil, ErrNoop
	}

	imageID := p.ids.NewID()
	b := tx.New().
		Create(domain.KindImages, imageID, p.imageAttrs(in)).
		Link(owner.Kind, owner.ID, "images", imageID)
	if !owner.hasDefault() {
		b.Update(owner.Kind, owner.ID, p.touched(tx.Attrs{domain.AttrDefaultImageURI: in.URI()}))
	}
	return &Plan{ID: imageID, Batch: b}, nil
}

// SetDefaultImage plans making image the owner's default.
func (p *Planner) SetDefaultImage(owner Owner, image domain.Image) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(owner.Images, func(i domain.Image) bool { return i.ID == image.ID }) {
		return nil, domainerrors.NotFoundf("image %s is not attached to this %s", image.ID, owner.Kind)
	}
	if owner.hasDefault() && *owner.DefaultImageURI == image.URI {
		return nil, ErrNoop
	}
	b := tx.New().Update(owner.Kind, owner.ID, p.touched(tx.Attrs{domain.AttrDefaultImageURI: image.URI}))
	return &Plan{ID: owner.ID, Batch: b}, nil
}

// RemoveImage plans deleting image. When it was the default and no
// remaining image shares its URI, the first remaining image takes over, or
// the default is cleared. Removing an image the owner no longer has is
// ErrNoop.
func (p *Planner) RemoveImage(owner Owner, image domain.Image) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(owner.Images, func(i domain.Image) bool { return i.ID == image.ID }) {
		return nil, ErrNoop
	}

	b := tx.New().Delete(domain.KindImages, image.ID)
	if owner.hasDefault() && *owner.DefaultImageURI == image.URI {
		remaining := slices.DeleteFunc(slices.Clone(owner.Images), func(i domain.Image) bool { return i.ID == image.ID })
		if !slices.ContainsFunc(remaining, func(i domain.Image) bool { return i.URI == image.URI }) {
			var next any
			if len(remaining) > 0 {
				next = remaining[0].URI
			}
			b.Update(owner.Kind, owner.ID, p.touched(tx.Attrs{domain.AttrDefaultImageURI: next}))
		}
	}
	return &Plan{ID: owner.ID, Batch: b}, nil
}

// UpdateTags plans linking and unlinking tags so that exactly selected
// are attached. No difference is ErrNoop.
func (p *Planner) UpdateTags(owner Owner, selected []string) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(selected))
	for _, tagID := range selected {
		want[tagID] = true
	}
	have := make(map[string]bool, len(owner.Tags))
	for _, t := range owner.Tags {
		have[t.ID] = true
	}

	b := tx.New()
	for _, tagID := range selected {
		if tagID != "" && !have[tagID] {
			b.Link(owner.Kind, owner.ID, "tags", tagID)
			have[tagID] = true
		}
	}
	for _, t := range owner.Tags {
		if !want[t.ID] {
			b.Unlink(owner.Kind, owner.ID, "tags", t.ID)
		}
	}
	if b.Empty() {
		return nil, ErrNoop
	}
	return &Plan{ID: owner.ID, Batch: b}, nil
}

// SetFavorite plans setting the owner's favorite flag.
func (p *Planner) SetFavorite(owner Owner, favorite bool) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	b := tx.New().Update(owner.Kind, owner.ID, p.touched(tx.Attrs{domain.AttrIsFavorite: favorite}))
	return &Plan{ID: owner.ID, Batch: b}, nil
}

// UpdateNotes plans replacing the owner's notes.
func (p *Planner) UpdateNotes(owner Owner, notes string) (*Plan, error) {
	if err := validOwner(owner); err != nil {
		return nil, err
	}
	b := tx.New().Update(owner.Kind, owner.ID, p.touched(tx.Attrs{domain.AttrNotes: notes}))
	return &Plan{ID: owner.ID, Batch: b}, nil
}
