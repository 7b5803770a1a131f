package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer turns a burst of file events into one callback, fired once no
// event has arrived for the interval. The callback receives the path of the
// last event of the burst. Callbacks never run concurrently, so a slow run
// delays the next one instead of overlapping it.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	stopped bool

	running sync.Mutex
}

// NewDebouncer creates a debouncer that calls callback after interval of
// quiet.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event for path and restarts the quiet period. It is a
// no-op after Stop.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = path

	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.fire)
		return
	}

	d.timer.Reset(d.interval)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	path := d.pending
	d.mu.Unlock()

	d.running.Lock()
	defer d.running.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("watch run panicked", slog.String("path", path), slog.Any("panic", r))
		}
	}()

	d.callback(path)
}

// Stop cancels a pending callback and ignores later triggers. A callback
// that is already running is not interrupted.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true

	if d.timer != nil {
		d.timer.Stop()
	}
}
