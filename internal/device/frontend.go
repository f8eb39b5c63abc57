package device

import (
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
)

// Handle is a frontend-facing open device handle (spec.md §4.6).
type Handle struct {
	registry       *Registry
	device         *Device
	decoderFactory DecoderFactory
}

// Open implements spec.md §4.6's open(): wait for registry readiness,
// pick the named device (or the first READY one if name is empty),
// require CLOSED, install a cancel event, transition to IDLE, and
// increment the refcount.
func Open(registry *Registry, name string, readyTimeout time.Duration, decoderFactory DecoderFactory) (*Handle, Status) {
	if !registry.WaitReady(readyTimeout) {
		return nil, StatusIOError
	}

	var d *Device
	if name == "" {
		ready := registry.Collect(FlagReady)
		if len(ready) == 0 {
			return nil, StatusInval
		}
		d = ready[0]
	} else {
		var ok bool
		d, ok = registry.Find(name)
		if !ok {
			return nil, StatusInval
		}
	}

	if d.state.load() != StateClosed {
		return nil, StatusDeviceBusy
	}

	d.cancelEvt = eloop.NewCancelEvent()
	d.loop.Watch(d.cancelEvt, d.onCancelDelivered)

	d.AddRef()
	d.setState(StateIdle)

	return &Handle{registry: registry, device: d, decoderFactory: decoderFactory}, StatusGood
}

// Close implements spec.md §4.6's close(): if working, cancel and wait
// for the machine to leave the working states, tear down the cancel
// event, set CLOSED, and release the handle's reference.
func (h *Handle) Close() Status {
	d := h.device

	d.mu.Lock()
	working := d.state.load().IsWorking()
	d.mu.Unlock()

	if working {
		d.requestCancel()
		d.mu.Lock()
		for d.state.load().IsWorking() {
			d.cond.Wait()
		}
		d.mu.Unlock()
	}

	if d.state.load() == StateDone {
		d.setState(StateIdle)
	}

	d.cancelEvt = nil
	d.flags.clear(FlagScanning)
	d.flags.clear(FlagReading)
	d.setState(StateClosed)
	d.Release()

	return StatusGood
}

// Start implements spec.md §4.6's start() / §4.5.
func (h *Handle) Start() Status {
	d := h.device
	if d.state.load() == StateScanning {
		return StatusDeviceBusy
	}
	fp := d.options.DeriveFrontendParams()
	if fp.PixelsPerLine <= 0 || fp.Lines <= 0 {
		return StatusInval
	}
	d.flags.set(FlagScanning)
	return h.device.beginStart(h.decoderFactory)
}

// Cancel implements spec.md §4.6's cancel() / §4.3.
func (h *Handle) Cancel() Status {
	h.device.requestCancel()
	return StatusGood
}

// Read implements spec.md §4.6's read() / §4.5.
func (h *Handle) Read(buf []byte) (int, Status) {
	res := h.device.read(buf, h.device.nonBlocking)
	if res.Status != StatusGood {
		h.device.flags.clear(FlagScanning)
	}
	return res.N, res.Status
}

// SetIOMode implements spec.md §4.6's "set io mode (non_blocking)":
// only effective while scanning.
func (h *Handle) SetIOMode(nonBlocking bool) Status {
	if !h.device.flags.has(FlagScanning) {
		return StatusInval
	}
	h.device.mu.Lock()
	h.device.nonBlocking = nonBlocking
	h.device.mu.Unlock()
	return StatusGood
}

// GetSelectFD implements spec.md §4.6's "get select fd": only while
// scanning, returns a descriptor that becomes readable on state or
// queue changes.
func (h *Handle) GetSelectFD() (int, Status) {
	if !h.device.flags.has(FlagScanning) {
		return -1, StatusInval
	}
	return h.device.queue.selectFD(), StatusGood
}

// GetParameters implements spec.md §4.6's "get parameters".
func (h *Handle) GetParameters() FrontendParams {
	h.device.mu.Lock()
	defer h.device.mu.Unlock()
	return h.device.options.DeriveFrontendParams()
}

// SetOption implements spec.md §4.6's "set option": rejected while
// SCANNING.
func (h *Handle) SetOption(apply func(*Selections)) Status {
	if h.device.flags.has(FlagScanning) {
		return StatusInval
	}
	h.device.mu.Lock()
	apply(&h.device.options.Selections)
	h.device.mu.Unlock()
	return StatusGood
}

// GetOption implements spec.md §4.6's "get option".
func (h *Handle) GetOption() Selections {
	h.device.mu.Lock()
	defer h.device.mu.Unlock()
	return h.device.options.Selections
}
