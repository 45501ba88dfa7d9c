package domain

// Location is where on a piece a part is applied.
type Location string

// Part locations.
const (
	LocationInner Location = "inner"
	LocationOuter Location = "outer"
)

// Valid reports whether l is a known location.
func (l Location) Valid() bool {
	return l == LocationInner || l == LocationOuter
}

// PartType says which arm of a piece part is populated.
type PartType string

// Part types.
const (
	PartTypeGlaze PartType = "glaze"
	PartTypeCombo PartType = "combo"
)

// Valid reports whether t is a known part type.
func (t PartType) Valid() bool {
	return t == PartTypeGlaze || t == PartTypeCombo
}

// PiecePart attribute names.
const (
	AttrLocation = "location"
	AttrType     = "type"
)

// Piece is a physical ceramic object.
type Piece struct {
	Record
	Name            string  `json:"name,omitempty"`
	Description     string  `json:"description,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	DefaultImageURI *string `json:"defaultImageUri"`
	IsFavorite      bool    `json:"isFavorite,omitempty"`
}

// PiecePart attaches a glaze or a combo to a piece at a location.
// Layers is only meaningful when Type is PartTypeGlaze.
type PiecePart struct {
	Record
	Location Location `json:"location"`
	Type     PartType `json:"type"`
	Layers   int      `json:"layers,omitempty"`
}
