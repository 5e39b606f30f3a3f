package loop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomz197/whackamole/internal/game"
)

// Dispatcher schedules callbacks on time.Timers and hands every firing back
// to the session goroutine through C. Callbacks never run on the timer
// goroutines themselves.
type Dispatcher struct {
	calls chan func()
	done  chan struct{}
	once  sync.Once
}

// Ensure Dispatcher satisfies game.Scheduler.
var _ game.Scheduler = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. Call Close when the session ends.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		calls: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// C returns the channel of pending firings. The owner runs each one.
func (d *Dispatcher) C() <-chan func() { return d.calls }

// Every runs fn every interval until the returned timer is stopped.
func (d *Dispatcher) Every(interval time.Duration, fn func()) game.Timer {
	return d.start(interval, true, fn)
}

// After runs fn once after delay unless the returned timer is stopped first.
func (d *Dispatcher) After(delay time.Duration, fn func()) game.Timer {
	return d.start(delay, false, fn)
}

// Close stops every outstanding timer goroutine.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
}

func (d *Dispatcher) start(dur time.Duration, repeat bool, fn func()) *dispatchTimer {
	t := &dispatchTimer{stop: make(chan struct{})}
	t.live.Store(true)

	fire := func() {
		if !t.live.Load() {
			return
		}
		if !repeat {
			t.live.Store(false)
		}
		fn()
	}

	if repeat {
		go d.runTicker(t, dur, fire)
	} else {
		go d.runTimer(t, dur, fire)
	}
	return t
}

func (d *Dispatcher) runTicker(t *dispatchTimer, dur time.Duration, fire func()) {
	ticker := time.NewTicker(dur)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !d.post(t, fire) {
				return
			}
		case <-t.stop:
			return
		case <-d.done:
			return
		}
	}
}

func (d *Dispatcher) runTimer(t *dispatchTimer, dur time.Duration, fire func()) {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-timer.C:
		d.post(t, fire)
	case <-t.stop:
	case <-d.done:
	}
}

func (d *Dispatcher) post(t *dispatchTimer, fire func()) bool {
	select {
	case d.calls <- fire:
		return true
	case <-t.stop:
		return false
	case <-d.done:
		return false
	}
}

// dispatchTimer is cancelled through a liveness flag checked on the owner
// goroutine, so a firing already queued in C becomes a no-op after Stop.
type dispatchTimer struct {
	live atomic.Bool
	stop chan struct{}
	once sync.Once
}

func (t *dispatchTimer) Stop() {
	t.live.Store(false)
	t.once.Do(func() { close(t.stop) })
}
