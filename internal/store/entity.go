package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
)

// Entity provides typed reads for one record kind. Writes always go
// through Transact so they stay atomic with their links.
type Entity[T any] struct {
	store *Store
	kind  domain.Kind
}

// NewEntity creates a new Entity accessor for kind.
func NewEntity[T any](s *Store, kind domain.Kind) *Entity[T] {
	return &Entity[T]{store: s, kind: kind}
}

// Kind returns the record kind this accessor reads.
func (e *Entity[T]) Kind() domain.Kind {
	return e.kind
}

// Get retrieves a record by ID.
// Returns a NOT_FOUND error if the record does not exist.
func (e *Entity[T]) Get(ctx context.Context, recordID string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := buildRecordKey(e.kind, recordID)
	defer releaseKey(key)

	var entity T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.NotFoundf("%s %s not found", e.kind, recordID)
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// Exists reports whether a record with the ID exists.
func (e *Entity[T]) Exists(ctx context.Context, recordID string) (bool, error) {
	_, err := e.Get(ctx, recordID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List returns an iterator over every record of the kind in key order.
// Iteration stops at the first error, which is yielded with a nil record.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := kindPrefix(e.kind)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, fmt.Errorf("unmarshal %s: %w", e.kind, err))
					return err
				}
				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// LinkedIDs returns the ids linked from recordID under label.
func (e *Entity[T]) LinkedIDs(ctx context.Context, recordID, label string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := domain.LookupRelation(e.kind, label); !ok {
		return nil, domainerrors.Validationf("unknown relation %s.%s", e.kind, label)
	}
	var ids []string
	err := e.store.db.View(func(txn *badger.Txn) error {
		ids = (&reader{txn: txn}).targets(e.kind, recordID, label)
		return nil
	})
	return ids, err
}

// LinkedIDs returns the ids linked from kind/recordID under label.
func (s *Store) LinkedIDs(ctx context.Context, kind domain.Kind, recordID, label string) ([]string, error) {
	return (&Entity[struct{}]{store: s, kind: kind}).LinkedIDs(ctx, recordID, label)
}
