package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/glazepal/glazepal/internal/domain"
)

// BatchWriter provides bulk writes using BadgerDB's WriteBatch. It skips
// the per-op checks of Transact and is only used to load snapshots into
// an empty store.
type BatchWriter struct {
	store     *Store
	batch     *badger.WriteBatch
	maxSize   int
	count     int
	autoFlush bool
	touched   *touchSet
}

// NewBatchWriter creates a new batch writer that will auto-flush when maxSize is reached
func (s *Store) NewBatchWriter(maxSize int) *BatchWriter {
	return &BatchWriter{
		store:     s,
		batch:     s.db.NewWriteBatch(),
		maxSize:   maxSize,
		autoFlush: maxSize > 0,
		touched:   newTouchSet(),
	}
}

// PutRecord writes raw record JSON under kind/id.
func (b *BatchWriter) PutRecord(kind domain.Kind, recordID string, data []byte) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err := b.batch.Set(recordKey(kind, recordID), data); err != nil {
		return fmt.Errorf("batch set record: %w", err)
	}
	b.touched.add(kind, recordID)
	return b.counted()
}

// PutLink writes both sides of an edge.
func (b *BatchWriter) PutLink(kind domain.Kind, recordID, label, target string) error {
	rel, ok := domain.LookupRelation(kind, label)
	if !ok {
		return fmt.Errorf("unknown relation %s.%s", kind, label)
	}
	if err := b.batch.Set(linkKey(kind, recordID, label, target), nil); err != nil {
		return fmt.Errorf("batch set link: %w", err)
	}
	if err := b.batch.Set(linkKey(rel.To, target, rel.Reverse, recordID), nil); err != nil {
		return fmt.Errorf("batch set reverse link: %w", err)
	}
	return b.counted()
}

func (b *BatchWriter) counted() error {
	b.count++
	if b.autoFlush && b.count >= b.maxSize {
		if err := b.Flush(); err != nil {
			return fmt.Errorf("auto flush: %w", err)
		}
	}
	return nil
}

// Flush commits all pending writes in the batch
func (b *BatchWriter) Flush() error {
	if b.count == 0 {
		return nil
	}

	if err := b.batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	b.store.logger.LogAttrs(context.Background(), slog.LevelInfo, "batch flushed",
		slog.Int("count", b.count),
	)

	b.count = 0
	b.batch = b.store.db.NewWriteBatch()

	return nil
}

// Close flushes the remaining writes and notifies live queries and the
// search index about everything written through this writer.
func (b *BatchWriter) Close() error {
	if err := b.Flush(); err != nil {
		return err
	}
	b.batch.Cancel()

	event := ChangeEvent{TxID: "import", Kinds: b.touched.kinds(), IDs: b.touched.ids(), At: b.store.now().UTC()}
	if len(event.Kinds) > 0 {
		b.store.eventEmitter.Emit(event)
		b.store.reindex(event)
	}
	return nil
}

// Cancel discards all pending writes in the batch
func (b *BatchWriter) Cancel() {
	b.batch.Cancel()
	b.count = 0
}

// Count returns the number of operations in the current batch
func (b *BatchWriter) Count() int {
	return b.count
}
