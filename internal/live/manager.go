package live

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/glazepal/glazepal/internal/domain"
	domainerrors "github.com/glazepal/glazepal/internal/errors"
	"github.com/glazepal/glazepal/internal/id"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/store"
)

// Querier runs store queries. *store.Store implements it.
type Querier interface {
	Query(ctx context.Context, q store.Query) (*store.Graph, error)
}

// Manager tracks subscriptions and refreshes them on store changes.
type Manager struct {
	querier Querier
	subs    map[string]*Subscription
	events  chan store.ChangeEvent
	logger  *slog.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex

	// Refreshes are spaced so a burst of commits cannot monopolize the store.
	limiter *rate.Limiter
	// Maximum concurrent re-queries per change event.
	parallelism int

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new live query Manager.
func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		subs:        make(map[string]*Subscription),
		events:      make(chan store.ChangeEvent, 256),
		logger:      logger.OrDiscard(log),
		limiter:     rate.NewLimiter(rate.Every(5*time.Millisecond), 50),
		parallelism: 4,
	}
}

// SetQuerier sets the store used to run queries. The store is created
// after the manager because it needs the manager as its emitter.
func (m *Manager) SetQuerier(q Querier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.querier = q
}

// Start runs the refresh loop until ctx is cancelled.
// This should be called once at startup in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	m.logger.Info("live query manager starting")

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				return
			}
			if err := m.limiter.Wait(ctx); err != nil {
				m.closeAll()
				return
			}
			m.broadcast(ctx, coalesce(event, m.events))

		case <-ctx.Done():
			m.logger.Info("live query manager stopping")
			m.closeAll()
			return
		}
	}
}

// coalesce merges events already queued behind first into one refresh.
func coalesce(first store.ChangeEvent, queue chan store.ChangeEvent) store.ChangeEvent {
	merged := first
	for {
		select {
		case next, ok := <-queue:
			if !ok {
				return merged
			}
			merged = mergeEvents(merged, next)
		default:
			return merged
		}
	}
}

func mergeEvents(a, b store.ChangeEvent) store.ChangeEvent {
	out := store.ChangeEvent{TxID: b.TxID, At: b.At, IDs: make(map[domain.Kind][]string)}
	seen := make(map[domain.Kind]bool)
	for _, e := range []store.ChangeEvent{a, b} {
		for _, k := range e.Kinds {
			if !seen[k] {
				seen[k] = true
				out.Kinds = append(out.Kinds, k)
			}
		}
		for k, ids := range e.IDs {
			out.IDs[k] = append(out.IDs[k], ids...)
		}
	}
	return out
}

// Shutdown gracefully shuts down the manager.
// It stops accepting new events, drains remaining events, and closes all subscriptions.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("live query manager shutdown initiated")

	// Mark as shutdown AND close channel atomically while holding lock.
	// This prevents race with Emit() which holds read lock during send.
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return nil
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		for event := range m.events {
			m.broadcast(ctx, event)
		}
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("live query events drained")
	case <-ctx.Done():
		m.logger.Warn("live query drain timeout, some refreshes may be lost")
	}

	m.wg.Wait()
	m.closeAll()

	m.logger.Info("live query manager shutdown complete")
	return nil
}

// Emit queues a committed batch for refreshing subscribers.
// This implements the store.EventEmitter interface.
func (m *Manager) Emit(event store.ChangeEvent) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Error("live query event channel full, dropping event",
			slog.String("tx_id", event.TxID))
	}
}

// Subscribe registers q and delivers its current result as the first
// Update. The subscription ends when ctx is done or Unsubscribe is called.
func (m *Manager) Subscribe(ctx context.Context, q store.Query) (*Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m.shutdownMu.RLock()
	closed := m.shutdown
	m.shutdownMu.RUnlock()
	if closed {
		return nil, domainerrors.Internalf("live query manager is shut down")
	}

	m.mu.RLock()
	querier := m.querier
	m.mu.RUnlock()
	if querier == nil {
		return nil, domainerrors.Internalf("live query manager has no store")
	}

	subID, err := id.Generate("sub")
	if err != nil {
		return nil, err
	}

	graph, err := querier.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	kinds := make(map[domain.Kind]bool)
	for _, k := range q.Kinds() {
		kinds[k] = true
	}
	sub := &Subscription{
		ID:           subID,
		Query:        q,
		Updates:      make(chan Update, 16),
		Done:         make(chan struct{}),
		SubscribedAt: time.Now(),
		kinds:        kinds,
	}
	sub.Updates <- Update{Graph: graph, At: sub.SubscribedAt}

	m.mu.Lock()
	m.subs[sub.ID] = sub
	total := len(m.subs)
	m.mu.Unlock()

	context.AfterFunc(ctx, func() { m.Unsubscribe(sub.ID) })

	m.logger.Debug("live query subscribed",
		slog.String("subscription_id", sub.ID),
		slog.Any("kinds", q.Kinds()),
		slog.Int("total_subscriptions", total))

	return sub, nil
}

// Unsubscribe removes a subscription and closes its channels.
func (m *Manager) Unsubscribe(subID string) {
	m.mu.Lock()
	sub, ok := m.subs[subID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.subs, subID)
	total := len(m.subs)
	m.mu.Unlock()

	close(sub.Done)
	close(sub.Updates)

	m.logger.Debug("live query unsubscribed",
		slog.String("subscription_id", subID),
		slog.Duration("duration", time.Since(sub.SubscribedAt)),
		slog.Int("total_subscriptions", total))
}

// broadcast re-runs every subscription affected by event.
func (m *Manager) broadcast(ctx context.Context, event store.ChangeEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.querier == nil {
		return
	}

	var (
		statsMu                     sync.Mutex
		delivered, dropped, skipped int
	)

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(m.parallelism)

	for _, sub := range m.subs {
		if !sub.watches(event.Kinds) {
			skipped++
			continue
		}
		g.Go(func() error {
			update := Update{TxID: event.TxID, At: time.Now()}
			update.Graph, update.Err = m.querier.Query(gctx, sub.Query)

			statsMu.Lock()
			defer statsMu.Unlock()

			// Non-blocking send; a slow subscriber loses its oldest pending update.
			if sub.deliver(update) {
				dropped++
				m.logger.Warn("dropped stale update for slow subscriber",
					slog.String("subscription_id", sub.ID),
					slog.String("tx_id", event.TxID))
			} else {
				delivered++
			}
			return nil
		})
	}
	_ = g.Wait()

	m.logger.Debug("live queries refreshed",
		slog.String("tx_id", event.TxID),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("skipped", skipped),
			slog.Int("dropped", dropped)))
}

// Subscriptions returns an iterator over all active subscriptions.
func (m *Manager) Subscriptions() iter.Seq[*Subscription] {
	return func(yield func(*Subscription) bool) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		for _, sub := range m.subs {
			if !yield(sub) {
				return
			}
		}
	}
}

// Count returns the number of active subscriptions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// closeAll closes every subscription (used during shutdown).
func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs {
		close(sub.Done)
		close(sub.Updates)
	}
	m.subs = make(map[string]*Subscription)

	m.logger.Info("all live queries closed")
}
