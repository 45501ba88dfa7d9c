package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestGuard(t *testing.T) (*Guard, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := NewGuard()
	g.now = clock.Now
	t.Cleanup(g.Stop)
	return g, clock
}

func TestGuard_Acquire(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantOK  bool
	}{
		{name: "during cooldown", advance: 100 * time.Millisecond, wantOK: false},
		{name: "cooldown boundary", advance: 400 * time.Millisecond, wantOK: true},
		{name: "after cooldown", advance: time.Second, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, clock := newTestGuard(t)

			release, ok := g.Acquire("save:glaze", 400*time.Millisecond)
			if !ok {
				t.Fatal("first Acquire() = false")
			}
			if _, ok := g.Acquire("save:glaze", 400*time.Millisecond); ok {
				t.Fatal("Acquire() while in flight = true")
			}

			release()
			clock.Advance(tt.advance)

			if _, ok := g.Acquire("save:glaze", 400*time.Millisecond); ok != tt.wantOK {
				t.Errorf("Acquire() after %v = %v, want %v", tt.advance, ok, tt.wantOK)
			}
		})
	}
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	g, _ := newTestGuard(t)

	if _, ok := g.Acquire("a", time.Second); !ok {
		t.Fatal("Acquire(a) = false")
	}
	if _, ok := g.Acquire("b", time.Second); !ok {
		t.Error("Acquire(b) blocked by a")
	}
	if !g.Busy("a") || g.Busy("c") {
		t.Error("Busy() reports the wrong keys")
	}
}

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	g, clock := newTestGuard(t)

	release, _ := g.Acquire("k", time.Second)
	release()
	clock.Advance(2 * time.Second)
	release()

	if _, ok := g.Acquire("k", time.Second); !ok {
		t.Error("second release() restarted the cooldown")
	}
}

func TestGuard_ConcurrentAcquire(t *testing.T) {
	g, _ := newTestGuard(t)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := g.Acquire("same", time.Second); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d goroutines acquired the key, want 1", wins.Load())
	}
}

func TestGuard_Prune(t *testing.T) {
	g, clock := newTestGuard(t)

	release, _ := g.Acquire("k", time.Second)
	release()
	clock.Advance(time.Hour)
	g.prune()

	g.mu.Lock()
	n := len(g.until)
	g.mu.Unlock()
	if n != 0 {
		t.Errorf("prune() left %d keys", n)
	}
}
