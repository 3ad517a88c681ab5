package performance

import (
	"sync"
	"time"
)

// Debouncer provides debouncing functionality for frequent operations
type Debouncer struct {
	mutex    sync.Mutex
	timers   map[string]*pendingCall
	duration time.Duration
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		timers:   make(map[string]*pendingCall),
		duration: duration,
	}
}

// Debounce executes the function after the debounce duration has passed.
// If called again with the same key before the duration expires, the previous call is cancelled.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if p, exists := d.timers[key]; exists {
		p.timer.Stop()
	}

	p := &pendingCall{fn: fn}
	p.timer = time.AfterFunc(d.duration, func() {
		d.mutex.Lock()
		// A Flush or a newer Debounce may have replaced this call while the
		// timer was waiting for the lock.
		if d.timers[key] != p {
			d.mutex.Unlock()
			return
		}
		delete(d.timers, key)
		d.mutex.Unlock()
		fn()
	})
	d.timers[key] = p
}

// Flush runs a pending call for key immediately. It reports whether a call was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mutex.Lock()
	p, exists := d.timers[key]
	if !exists {
		d.mutex.Unlock()
		return false
	}
	p.timer.Stop()
	delete(d.timers, key)
	d.mutex.Unlock()

	p.fn()
	return true
}

// Pending reports whether a call is scheduled for key
func (d *Debouncer) Pending(key string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	_, exists := d.timers[key]
	return exists
}

// Cancel cancels a pending debounced function call
func (d *Debouncer) Cancel(key string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if p, exists := d.timers[key]; exists {
		p.timer.Stop()
		delete(d.timers, key)
	}
}

// Keys lists the keys with a pending call
func (d *Debouncer) Keys() []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	keys := make([]string, 0, len(d.timers))
	for key := range d.timers {
		keys = append(keys, key)
	}
	return keys
}

// Clear cancels all pending debounced function calls
func (d *Debouncer) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for key, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, key)
	}
}
