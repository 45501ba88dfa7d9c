// Package store persists the catalog graph in BadgerDB. It applies
// primitive operation batches atomically and resolves nested queries.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/logger"
)

// ChangeEvent describes a committed batch.
type ChangeEvent struct {
	TxID  string                   `json:"txId"`
	Kinds []domain.Kind            `json:"kinds"`
	IDs   map[domain.Kind][]string `json:"ids"`
	At    time.Time                `json:"at"`
}

// Touches reports whether the event changed any record of kind.
func (e ChangeEvent) Touches(kind domain.Kind) bool {
	_, ok := e.IDs[kind]
	return ok
}

// EventEmitter receives an event for every committed batch.
// Store uses this to notify live queries without depending on them.
type EventEmitter interface {
	Emit(event ChangeEvent)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(ChangeEvent) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer keeps a full-text index in sync with committed records.
// Updates run asynchronously so they never block a transaction.
type SearchIndexer interface {
	IndexRecord(ctx context.Context, obj *Object) error
	DeleteRecord(ctx context.Context, kind domain.Kind, id string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexRecord is a no-op.
func (NoopSearchIndexer) IndexRecord(context.Context, *Object) error { return nil }

// DeleteRecord is a no-op.
func (NoopSearchIndexer) DeleteRecord(context.Context, domain.Kind, string) error { return nil }

// indexedKinds are the kinds mirrored into the search index.
var indexedKinds = []domain.Kind{domain.KindGlazes, domain.KindCombos, domain.KindPieces}

// Option configures a Store.
type Option func(*Store)

// WithQueryRetryAttempts sets how many times a read query is attempted.
func WithQueryRetryAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.queryAttempts = n
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInMemory opens badger without touching disk. The path is ignored.
func WithInMemory() Option {
	return func(s *Store) {
		s.inMemory = true
	}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Live query emitter for broadcasting committed batches.
	eventEmitter EventEmitter

	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	mu            sync.RWMutex
	searchIndexer SearchIndexer
	indexing      sync.WaitGroup

	queryAttempts int
	now           func() time.Time
	inMemory      bool

	// Typed accessors.
	Glazes       *Entity[domain.Glaze]
	Combos       *Entity[domain.Combo]
	Applications *Entity[domain.GlazeApplication]
	Pieces       *Entity[domain.Piece]
	Parts        *Entity[domain.PiecePart]
	Tags         *Entity[domain.Tag]
	Brands       *Entity[domain.Brand]
	Images       *Entity[domain.Image]
}

// New opens the store at path. The emitter is required and receives an
// event for every committed batch.
func New(path string, log *slog.Logger, emitter EventEmitter, opts ...Option) (*Store, error) {
	s := &Store{
		logger:        logger.OrDiscard(log),
		eventEmitter:  emitter,
		queryAttempts: 2,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eventEmitter == nil {
		s.eventEmitter = NoopEmitter{}
	}

	badgerOpts := badger.DefaultOptions(path)
	if s.inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	badgerOpts.Logger = nil            // Disable Badger's internal logging
	badgerOpts.SyncWrites = !s.inMemory // Sync writes so a crash never loses a committed batch
	badgerOpts.CompactL0OnClose = true

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	s.db = db

	s.Glazes = NewEntity[domain.Glaze](s, domain.KindGlazes)
	s.Combos = NewEntity[domain.Combo](s, domain.KindCombos)
	s.Applications = NewEntity[domain.GlazeApplication](s, domain.KindApplications)
	s.Pieces = NewEntity[domain.Piece](s, domain.KindPieces)
	s.Parts = NewEntity[domain.PiecePart](s, domain.KindParts)
	s.Tags = NewEntity[domain.Tag](s, domain.KindTags)
	s.Brands = NewEntity[domain.Brand](s, domain.KindBrands)
	s.Images = NewEntity[domain.Image](s, domain.KindImages)

	s.logger.Info("badger database opened", "path", path, "in_memory", s.inMemory)

	return s, nil
}

// Close waits for pending index updates and closes the database.
func (s *Store) Close() error {
	s.indexing.Wait()
	s.logger.Info("closing database connection")
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation because the index is built from the store.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchIndexer = indexer
}

// WaitForIndex blocks until every queued search index update has run.
func (s *Store) WaitForIndex() {
	s.indexing.Wait()
}

func (s *Store) indexer() SearchIndexer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchIndexer
}

// newReadBackOff returns a fresh retry policy for one read query.
// BackOff implementations are stateful; never share one between calls.
func (s *Store) newReadBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 25 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.queryAttempts-1)), ctx)
}

// Count returns the number of records of kind.
func (s *Store) Count(ctx context.Context, kind domain.Kind) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	prefix := kindPrefix(kind)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
