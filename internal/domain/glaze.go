package domain

// Variant is how a glaze is applied.
type Variant string

// Glaze variants.
const (
	VariantBrush Variant = "brush"
	VariantDip   Variant = "dip"
)

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == VariantBrush || v == VariantDip
}

// MaxLayers returns the largest layer count a glaze of this variant may be
// applied with. Dipping glazes are applied once; 0 means unbounded.
func (v Variant) MaxLayers() int {
	if v == VariantDip {
		return 1
	}
	return 0
}

// AllowsLayers reports whether n layers are allowed for this variant.
func (v Variant) AllowsLayers(n int) bool {
	if n < 1 {
		return false
	}
	if limit := v.MaxLayers(); limit > 0 && n > limit {
		return false
	}
	return true
}

// Glaze attribute names.
const (
	AttrVariant = "variant"
)

// Glaze is a named ceramic surface treatment, either brushed or dipped.
type Glaze struct {
	Record
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Variant         Variant `json:"variant"`
	DefaultImageURI *string `json:"defaultImageUri"`
	IsFavorite      bool    `json:"isFavorite,omitempty"`
}

// Brand is a glaze manufacturer.
// The schema allows many brands per glaze but edits keep at most one linked.
type Brand struct {
	Record
	Name string `json:"name"`
}
