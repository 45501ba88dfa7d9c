// Package search keeps a Bleve full-text index of glazes, combos and
// pieces. The store feeds it after every committed batch.
package search

import (
	"strings"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/store"
)

// Document is one indexed record.
//
// Tag names are denormalized into the record's document so a single
// query covers both.
type Document struct {
	ID          string      `json:"id"`
	Kind        domain.Kind `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Variant     string      `json:"variant,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Favorite    bool        `json:"favorite"`
	CreatedAt   int64       `json:"created_at"` // Unix millis
	UpdatedAt   int64       `json:"updated_at"` // Unix millis
}

// docID is the index key of a record. Ids are only unique per kind.
func docID(kind domain.Kind, recordID string) string {
	return string(kind) + ":" + recordID
}

// splitDocID reverses docID.
func splitDocID(key string) (domain.Kind, string) {
	kind, recordID, _ := strings.Cut(key, ":")
	return domain.Kind(kind), recordID
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"kind":       string(d.Kind),
		"name":       d.Name,
		"favorite":   d.Favorite,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Notes != "" {
		m["notes"] = d.Notes
	}
	if d.Variant != "" {
		m["variant"] = d.Variant
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// FromObject builds the document for a fetched record. Tags are read from
// the object's "tags" relation when it was included.
func FromObject(obj *store.Object) (*Document, error) {
	var rec domain.Record
	if err := obj.Decode(&rec); err != nil {
		return nil, err
	}

	doc := &Document{
		ID:          obj.ID,
		Kind:        obj.Kind,
		Name:        obj.String(domain.AttrName),
		Description: obj.String(domain.AttrDescription),
		Notes:       obj.String(domain.AttrNotes),
		Variant:     obj.String(domain.AttrVariant),
		Favorite:    obj.Bool(domain.AttrIsFavorite),
	}
	if !rec.CreatedAt.IsZero() {
		doc.CreatedAt = rec.CreatedAt.UnixMilli()
	}
	if !rec.UpdatedAt.IsZero() {
		doc.UpdatedAt = rec.UpdatedAt.UnixMilli()
	}
	for _, tag := range obj.Related("tags") {
		if name := tag.String(domain.AttrName); name != "" {
			doc.Tags = append(doc.Tags, name)
		}
	}
	return doc, nil
}
