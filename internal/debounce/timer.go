// Package debounce provides the single-slot timer used by the persistence
// coordinators. Each coordinator instance owns its own timer, so the editor's
// autosave and the filler's draft recorder cannot interfere with each other.
package debounce

import (
	"sync"
	"time"
)

// Timer is a single-slot debounce timer: scheduling cancels any pending fire
// and starts a fresh countdown. The zero value is ready to use.
type Timer struct {
	mu sync.Mutex
	t  *time.Timer
}

// Schedule arranges fn to run after delay, replacing any pending schedule.
func (d *Timer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
	d.t = time.AfterFunc(delay, fn)
}

// Stop cancels any pending fire. It does not wait for a running fn.
func (d *Timer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
		d.t = nil
	}
}
