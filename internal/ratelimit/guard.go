// Package ratelimit provides a keyed submission guard. A key is busy while
// its action runs and for a cooldown after it finishes, whatever the outcome.
package ratelimit

import (
	"sync"
	"time"
)

// Guard tracks busy keys.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]bool
	until    map[string]time.Time
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewGuard creates a guard and starts its cleanup loop.
func NewGuard() *Guard {
	g := &Guard{
		inflight: make(map[string]bool),
		until:    make(map[string]time.Time),
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go g.cleanup(time.Minute)

	return g
}

// Acquire marks key busy. It returns false if key is already busy.
// Otherwise the returned release must be called when the action finishes;
// the key stays busy for cooldown after that.
func (g *Guard) Acquire(key string, cooldown time.Duration) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[key] || g.now().Before(g.until[key]) {
		return nil, false
	}
	g.inflight[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.inflight, key)
			g.until[key] = g.now().Add(cooldown)
		})
	}, true
}

// Busy reports whether key is running or cooling down.
func (g *Guard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight[key] || g.now().Before(g.until[key])
}

// Stop shuts down the cleanup goroutine.
func (g *Guard) Stop() {
	g.stopOnce.Do(func() {
		close(g.done)
	})
}

// cleanup drops expired cooldowns so the maps do not grow with every key
// ever used.
func (g *Guard) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			g.prune()
		}
	}
}

func (g *Guard) prune() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for key, until := range g.until {
		if !now.Before(until) {
			delete(g.until, key)
		}
	}
}
