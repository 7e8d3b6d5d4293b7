package game

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of calls: only the last call made within the
// window runs, once the window has passed without a newer call.
type Debouncer struct {
	window    time.Duration
	scheduler Scheduler

	mu    sync.Mutex
	timer Timer
	seq   uint64
}

func NewDebouncer(window time.Duration, scheduler Scheduler) *Debouncer {
	if scheduler == nil {
		scheduler = RealScheduler
	}
	return &Debouncer{window: window, scheduler: scheduler}
}

// Call replaces any pending call with f.
func (d *Debouncer) Call(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.scheduler.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a timer that fired while Stop was racing it must not run
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		f()
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
