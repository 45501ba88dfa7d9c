// Package id generates identifiers for catalog records, transactions and subscriptions.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewRecordID returns a random UUID v4 string. Record ids are assigned by
// the caller before a write so links can be planned in the same batch.
func NewRecordID() string {
	return uuid.NewString()
}

// IsRecordID reports whether s parses as a UUID.
func IsRecordID(s string) bool {
	return uuid.Validate(s) == nil
}

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "tx-V1StGXR8_Z5jdHi6B-myT")
//
// Used for ephemeral identifiers such as transaction receipts and live
// subscriptions, which never become record ids.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Source produces record ids. The planner takes a Source so tests can
// supply deterministic ids.
type Source interface {
	NewID() string
}

// SourceFunc adapts a function to Source.
type SourceFunc func() string

// NewID implements Source.
func (f SourceFunc) NewID() string { return f() }

// UUIDs is the default Source.
var UUIDs Source = SourceFunc(NewRecordID)

// Sequence returns a Source yielding prefix-1, prefix-2, ... for tests.
func Sequence(prefix string) Source {
	n := 0
	return SourceFunc(func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}
