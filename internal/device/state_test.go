package device

import "testing"

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateClosed:     "CLOSED",
		StateIdle:       "IDLE",
		StateScanning:   "SCANNING",
		StateCancelReq:  "CANCEL_REQ",
		StateCancelWait: "CANCEL_WAIT",
		StateCancelling: "CANCELLING",
		StateCleanup:    "CLEANUP",
		StateDone:       "DONE",
		State(99):       "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestStateIsWorking(t *testing.T) {
	working := []State{StateScanning, StateCancelReq, StateCancelWait, StateCancelling, StateCleanup}
	for _, s := range working {
		if !s.IsWorking() {
			t.Errorf("%s.IsWorking() = false, want true", s)
		}
	}

	notWorking := []State{StateClosed, StateIdle, StateDone}
	for _, s := range notWorking {
		if s.IsWorking() {
			t.Errorf("%s.IsWorking() = true, want false", s)
		}
	}
}

func TestAtomicStateCompareAndSwap(t *testing.T) {
	var s atomicState
	s.store(StateScanning)

	if !s.compareAndSwap(StateScanning, StateCancelReq) {
		t.Fatal("compareAndSwap from matching old value failed")
	}
	if got := s.load(); got != StateCancelReq {
		t.Errorf("load() = %s, want CANCEL_REQ", got)
	}

	// A second attempt with a stale old value must be rejected
	// (spec.md §4.3: "other concurrent attempts are silently dropped").
	if s.compareAndSwap(StateScanning, StateCancelReq) {
		t.Error("compareAndSwap succeeded against a stale old value")
	}
}
