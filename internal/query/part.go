package query

import "github.com/glazepal/glazepal/internal/domain"

// GlazePart is what covers one location of a piece: either a single glaze
// applied some number of times or a combo. Only GlazeSelection and
// ComboSelection implement it.
type GlazePart interface {
	PartLocation() domain.Location
	PartType() domain.PartType
	isGlazePart()
}

// GlazeSelection is a glaze applied Layers times at Location.
type GlazeSelection struct {
	Location domain.Location `json:"location"`
	Layers   int             `json:"layers"`
	Glaze    domain.Glaze    `json:"glaze"`
}

func (s GlazeSelection) PartLocation() domain.Location { return s.Location }
func (s GlazeSelection) PartType() domain.PartType     { return domain.PartTypeGlaze }
func (GlazeSelection) isGlazePart()                    {}

// WithLayers returns the selection with n layers. Dip glazes are applied
// once, so for them the selection is returned unchanged.
func (s GlazeSelection) WithLayers(n int) GlazeSelection {
	if !s.Glaze.Variant.AllowsLayers(n) {
		return s
	}
	s.Layers = n
	return s
}

// ComboSelection is a combo applied at Location.
type ComboSelection struct {
	Location domain.Location `json:"location"`
	Combo    ComboResponse   `json:"combo"`
}

func (s ComboSelection) PartLocation() domain.Location { return s.Location }
func (s ComboSelection) PartType() domain.PartType     { return domain.PartTypeCombo }
func (ComboSelection) isGlazePart()                    {}

// Relocate returns a copy of part placed at location.
func Relocate(part GlazePart, location domain.Location) GlazePart {
	switch p := part.(type) {
	case GlazeSelection:
		p.Location = location
		return p
	case ComboSelection:
		p.Location = location
		return p
	default:
		return part
	}
}
