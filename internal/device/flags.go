package device

import "sync/atomic"

// Flag is a bit in a Device's status bitset (spec.md §3 "Device").
type Flag uint32

const (
	// FlagListed is set while the device is present in the registry.
	FlagListed Flag = 1 << iota

	// FlagReady is set once capabilities are known and a protocol handler
	// is bound.
	FlagReady

	// FlagHalted is set once the device has been removed from the
	// registry; no new I/O may start.
	FlagHalted

	// FlagInitWait is set while endpoint probing is in progress; it
	// counts against the registry readiness barrier.
	FlagInitWait

	// FlagScanning is set between frontend start and the final read
	// returning a terminal status.
	FlagScanning

	// FlagReading is set while the caller may still pull bytes via read.
	FlagReading
)

// flagSet is an atomic bitset of Flag values, safe to read from any
// goroutine without the event-loop lock (spec.md §5 "Atomics").
type flagSet struct {
	bits atomic.Uint32
}

func (f *flagSet) set(flag Flag) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, old|uint32(flag)) {
			return
		}
	}
}

func (f *flagSet) clear(flag Flag) {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, old&^uint32(flag)) {
			return
		}
	}
}

func (f *flagSet) has(flag Flag) bool {
	return f.bits.Load()&uint32(flag) != 0
}

func (f *flagSet) load() Flag {
	return Flag(f.bits.Load())
}
