package wizard

import (
	"sync"
	"time"
)

type timer interface {
	Stop() bool
}

// afterFunc is mockable in tests.
var afterFunc = func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// Debouncer runs the last scheduled task once no other task has been scheduled for delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   timer
	task    func()
	gen     uint64
	stopped bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending task with task and restarts the delay.
// It is a no-op once the debouncer is stopped.
func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancel()
	d.gen++
	gen := d.gen
	d.task = task
	d.timer = afterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.timer = nil
	d.mu.Unlock()

	task()
}

// Cancel drops the pending task, reporting whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel()
}

func (d *Debouncer) cancel() bool {
	pending := d.task != nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.task = nil
	d.gen++
	return pending
}

// Flush runs the pending task now, in the calling goroutine.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	task := d.task
	d.cancel()
	d.mu.Unlock()

	if task == nil {
		return false
	}
	task()
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Stop cancels the pending task without running it and refuses any later one.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel()
	d.stopped = true
}
