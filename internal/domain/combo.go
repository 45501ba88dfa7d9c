package domain

// GlazeApplication attribute names.
const (
	AttrIsBase = "isBase"
	AttrLayers = "layers"
)

// GlazeApplication is one glaze used as a layer of a combo.
// It links to exactly one glaze and exactly one combo.
type GlazeApplication struct {
	Record
	IsBase      bool   `json:"isBase"`
	Layers      int    `json:"layers"`
	Description string `json:"description,omitempty"`
}

// Combo is a named stack of one base glaze layer plus additional layers.
type Combo struct {
	Record
	Name            string  `json:"name,omitempty"`
	Description     string  `json:"description,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	DefaultImageURI *string `json:"defaultImageUri"`
	IsFavorite      bool    `json:"isFavorite,omitempty"`
}
