// Package live delivers push-based query results. A subscription holds a
// store query; every committed batch touching one of the query's kinds
// re-runs it and pushes the fresh graph to the subscriber.
package live

import (
	"sync"
	"time"

	"github.com/glazepal/glazepal/internal/domain"
	"github.com/glazepal/glazepal/internal/store"
)

// Update is one delivery to a subscriber. Exactly one of Graph and Err is set.
type Update struct {
	Graph *store.Graph
	Err   error
	// TxID is the batch that caused the refresh; empty for the initial result.
	TxID string
	At   time.Time
}

// Subscription is a registered live query.
type Subscription struct {
	ID           string
	Query        store.Query
	Updates      chan Update
	Done         chan struct{}
	SubscribedAt time.Time

	kinds  map[domain.Kind]bool
	sendMu sync.Mutex
}

// watches reports whether a change to any of kinds affects the query.
func (s *Subscription) watches(kinds []domain.Kind) bool {
	for _, k := range kinds {
		if s.kinds[k] {
			return true
		}
	}
	return false
}

// deliver queues u without blocking. When the buffer is full the oldest
// pending update is discarded so the subscriber always ends up with the
// latest graph. It reports whether an update was discarded.
func (s *Subscription) deliver(u Update) (discarded bool) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	for {
		select {
		case s.Updates <- u:
			return discarded
		default:
		}
		select {
		case <-s.Updates:
			discarded = true
		default:
		}
	}
}
