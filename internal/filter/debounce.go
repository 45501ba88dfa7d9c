package filter

import (
	"sync"
	"time"
)

// DefaultDebounce is how long search input must be idle before it applies.
const DefaultDebounce = 400 * time.Millisecond

// Debouncer delivers the latest raw search input, normalized, once the
// input has been idle for the delay.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	commit func(string)
	timer  *time.Timer
	closed bool
}

// NewDebouncer returns a Debouncer that calls commit with the normalized
// query. A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, commit: commit}
}

// Input records a keystroke and restarts the idle timer.
func (d *Debouncer) Input(raw string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	q := NormalizeQuery(raw)
	d.timer = time.AfterFunc(d.delay, func() {
		d.commit(q)
	})
}

// Clear cancels pending input and commits the empty query immediately.
func (d *Debouncer) Clear() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	closed := d.closed
	d.mu.Unlock()
	if !closed {
		d.commit("")
	}
}

// Stop cancels pending input. Later input is ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
