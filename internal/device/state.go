package device

import "sync/atomic"

// State is the scan state machine's current state (spec.md §4.3).
// Grounded on the teacher's connection.State: an atomically-read/written
// enum with a String method, mutated only inside the event loop.
type State uint32

const (
	// StateClosed means no frontend handle is open.
	StateClosed State = iota
	// StateIdle means a handle is open but no job is running.
	StateIdle
	// StateScanning means a job is in progress.
	StateScanning
	// StateCancelReq means the frontend asked to cancel; the event-loop
	// has not yet observed the cancel event.
	StateCancelReq
	// StateCancelWait means cancel was observed but no job resource
	// exists yet to target a CANCEL request at.
	StateCancelWait
	// StateCancelling means a CANCEL request is in flight (or about to
	// be submitted).
	StateCancelling
	// StateCleanup means a CLEANUP request is in flight.
	StateCleanup
	// StateDone means the operation chain finished; the caller has not
	// yet consumed the terminal read.
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateIdle:
		return "IDLE"
	case StateScanning:
		return "SCANNING"
	case StateCancelReq:
		return "CANCEL_REQ"
	case StateCancelWait:
		return "CANCEL_WAIT"
	case StateCancelling:
		return "CANCELLING"
	case StateCleanup:
		return "CLEANUP"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// IsWorking reports whether s is a "working state" per the glossary:
// strictly between IDLE and DONE.
func (s State) IsWorking() bool {
	switch s {
	case StateScanning, StateCancelReq, StateCancelWait, StateCancelling, StateCleanup:
		return true
	default:
		return false
	}
}

// atomicState wraps an atomic.Uint32 as a State, matching the teacher's
// pattern of an atomically-visible enum field read by callers without
// the event-loop lock (spec.md §5 "Atomics": "stm_state is read and
// written with sequential-consistency atomics").
type atomicState struct {
	v atomic.Uint32
}

func (a *atomicState) load() State {
	return State(a.v.Load())
}

func (a *atomicState) store(s State) {
	a.v.Store(uint32(s))
}

// compareAndSwap performs the compare-and-set described in spec.md §4.3
// for SCANNING -> CANCEL_REQ: "entered only by a compare-and-set from
// SCANNING; other concurrent attempts are silently dropped."
func (a *atomicState) compareAndSwap(old, new State) bool {
	return a.v.CompareAndSwap(uint32(old), uint32(new))
}
