package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces the burst of events an editor or a
// data pipeline produces when it rewrites a file.
const DefaultDebounceDuration = 200 * time.Millisecond

// Debouncer runs the last triggered function once no trigger arrived for
// its duration.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a Debouncer. A non-positive duration selects
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the quiet period.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Trigger schedules fn, replacing any pending function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
