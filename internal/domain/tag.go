package domain

// Tag attribute names.
const (
	AttrRank  = "rank"
	AttrColor = "color"
)

// Tag is a label attachable to glazes, combos and pieces.
// Rank is the sort order in tag pickers.
type Tag struct {
	Record
	Name  string  `json:"name"`
	Rank  int     `json:"rank"`
	Color *string `json:"color"`
}
