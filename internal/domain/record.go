// Package domain contains the record types and relation schema for the GlazePal catalog.
package domain

import "time"

// Record provides the fields every stored record carries.
// It gets embedded in every record type so timestamps are handled in one place.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Touch updates the UpdatedAt timestamp.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new record.
func (r *Record) InitTimestamps(now time.Time) {
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Recency returns the instant used for "most recent first" ordering in
// Unix milliseconds: UpdatedAt, falling back to CreatedAt, falling back to 0.
func (r Record) Recency() int64 {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt.UnixMilli()
	}
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt.UnixMilli()
	}
	return 0
}

// Attribute names shared by several record kinds.
// These match the JSON field names of the record structs.
const (
	AttrID              = "id"
	AttrCreatedAt       = "createdAt"
	AttrUpdatedAt       = "updatedAt"
	AttrName            = "name"
	AttrDescription     = "description"
	AttrNotes           = "notes"
	AttrDefaultImageURI = "defaultImageUri"
	AttrIsFavorite      = "isFavorite"
)
