package eloop

import "sync"

// CancelEvent is a one-shot, idempotent cross-thread signal: spec.md §5
// describes cancellation as "level-triggered but idempotent; it arms a
// one-shot event" observed by the event-loop thread. Arm may be called
// from any goroutine (the frontend caller); Watch's callback always runs
// on the owning Loop.
type CancelEvent struct {
	mu    sync.Mutex
	armed bool
	ch    chan struct{}
}

// NewCancelEvent creates an unarmed event.
func NewCancelEvent() *CancelEvent {
	return &CancelEvent{ch: make(chan struct{})}
}

// Arm signals the event exactly once. Returns true if this call was the
// one that armed it, false if it was already armed (idempotent, per
// spec.md: "other concurrent attempts are silently dropped").
func (e *CancelEvent) Arm() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.armed {
		return false
	}
	e.armed = true
	close(e.ch)
	return true
}

// Armed reports whether Arm has been called.
func (e *CancelEvent) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

// Watch spawns a goroutine that waits for the event to be armed, then
// calls fn through the loop's Call — delivering it on the event-loop
// goroutine exactly as spec.md §4.3 requires ("delivered on the
// event-loop thread"). Watch is a no-op if the loop stops first.
func (l *Loop) Watch(e *CancelEvent, fn func()) {
	go func() {
		<-e.ch
		l.Call(fn)
	}()
}
