package wizard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// expire runs the timer func the way time.AfterFunc would, even after Stop lost the race.
func (t *fakeTimer) expire() { t.f() }

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	tm := &fakeTimer{delay: d, f: f}
	c.timers = append(c.timers, tm)
	return tm
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func useFakeClock(t *testing.T) *fakeClock {
	clock := &fakeClock{}
	orig := afterFunc
	afterFunc = clock.afterFunc
	t.Cleanup(func() { afterFunc = orig })
	return clock
}

func TestDebouncer_LastTaskWins(t *testing.T) {
	clock := useFakeClock(t)
	d := NewDebouncer(2 * time.Second)

	var runs []string
	d.Schedule(func() { runs = append(runs, "first") })
	first := clock.last()
	d.Schedule(func() { runs = append(runs, "second") })
	second := clock.last()

	assert.True(t, first.stopped)
	assert.Equal(t, 2*time.Second, second.delay)
	assert.True(t, d.Pending())

	first.expire() // superseded
	assert.Empty(t, runs)

	second.expire()
	assert.Equal(t, []string{"second"}, runs)
	assert.False(t, d.Pending())

	second.expire() // at most once
	assert.Equal(t, []string{"second"}, runs)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := useFakeClock(t)
	d := NewDebouncer(time.Second)

	ran := false
	d.Schedule(func() { ran = true })
	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel())

	clock.last().expire()
	assert.False(t, ran)
}

func TestDebouncer_Flush(t *testing.T) {
	clock := useFakeClock(t)
	d := NewDebouncer(time.Second)

	assert.False(t, d.Flush())

	n := 0
	d.Schedule(func() { n++ })
	assert.True(t, d.Flush())
	assert.Equal(t, 1, n)

	clock.last().expire()
	assert.Equal(t, 1, n)
}

func TestDebouncer_Stop(t *testing.T) {
	clock := useFakeClock(t)
	d := NewDebouncer(time.Second)

	ran := false
	d.Schedule(func() { ran = true })
	d.Stop()
	clock.last().expire()
	assert.False(t, ran)

	d.Schedule(func() { ran = true })
	assert.Equal(t, 1, clock.count())
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
	assert.False(t, ran)
}

func TestDebouncer_RealTimer(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	done := make(chan struct{})
	d.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}
