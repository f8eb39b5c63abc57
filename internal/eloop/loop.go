// Package eloop is the Go analogue of the event-loop thread described in
// spec.md §5: a single goroutine that serializes every state-machine
// transition, HTTP completion, and timer fire for a device. Callers from
// other goroutines never touch device state directly; they marshal work
// onto the loop with Call.
package eloop

import (
	"sync"
	"time"
)

// Loop runs queued functions one at a time, in submission order, on a
// single goroutine. It is the only goroutine allowed to mutate
// loop-owned state (mirrors spec.md's "event-loop thread").
type Loop struct {
	workCh chan func()
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// New creates a Loop. Call Start before submitting work.
func New() *Loop {
	return &Loop{
		workCh: make(chan func(), 64),
		stopCh: make(chan struct{}),
	}
}

// Start begins draining queued work on a new goroutine. Start must be
// called at most once.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	l.wg.Add(1)
	go l.run()
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.workCh:
			fn()
		case <-l.stopCh:
			// Drain whatever is already queued before exiting, so a Call
			// issued just before Stop is not silently dropped.
			for {
				select {
				case fn := <-l.workCh:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Call marshals fn onto the loop. Safe to call from any goroutine,
// including the loop goroutine itself (in which case fn runs after the
// current callback returns, never re-entrantly).
func (l *Loop) Call(fn func()) {
	select {
	case l.workCh <- fn:
	case <-l.stopCh:
	}
}

// Stop stops the loop after draining already-queued work. Blocks until
// the loop goroutine exits.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	close(l.stopCh)
	l.wg.Wait()
}

// Timer is a one-shot timer whose fire callback is delivered through the
// owning Loop's Call, so it observes loop-owned state safely.
type Timer struct {
	loop    *Loop
	timer   *time.Timer
	mu      sync.Mutex
	stopped bool
}

// AfterFunc schedules fn to run on the loop after d. Returns a Timer that
// can be stopped before it fires.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	t := &Timer{loop: l}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			l.Call(fn)
		}
	})
	return t
}

// Stop prevents the timer from firing, if it hasn't already. Returns
// true if the timer was stopped before it fired.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	return t.timer.Stop()
}
