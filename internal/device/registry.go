package device

import (
	"sync"
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
	"github.com/alexpevzner-fork/escl-scand/pkg/scanlog"
)

// Registry is the process-wide, event-loop-owned container of known
// devices described in spec.md §4.1: add/remove/find/collect/size/
// purge, plus a readiness broadcast for callers blocked in open().
type Registry struct {
	loop   *eloop.Loop
	http   *httpclient.Client
	logger scanlog.Logger

	mu               sync.Mutex
	cond             *sync.Cond // table_cond
	devices          map[string]*Device
	initScanFinished bool
}

// NewRegistry creates an empty Registry bound to the given event loop,
// HTTP client, and logger; every Device it creates shares these.
func NewRegistry(loop *eloop.Loop, http *httpclient.Client, logger scanlog.Logger) *Registry {
	r := &Registry{
		loop:    loop,
		http:    http,
		logger:  logger,
		devices: make(map[string]*Device),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Add inserts a new device if name is not already present (spec.md
// §4.1: "no-op if name exists"). Must run on the event-loop thread.
func (r *Registry) Add(name string, endpoints []Endpoint, initScan bool) *Device {
	r.mu.Lock()
	if d, ok := r.devices[name]; ok {
		r.mu.Unlock()
		return d
	}
	r.mu.Unlock()

	d := newDevice(name, endpoints, r.loop, r.http, r.logger)
	if initScan {
		d.flags.set(FlagInitWait)
	}

	r.mu.Lock()
	r.devices[name] = d
	r.mu.Unlock()

	return d
}

// Remove marks a device HALTED and unlists it. It drops the device from
// the index only if the device is destroyable at this call; a device with
// open handles or in-flight state stays in the index, HALTED, where Find
// and Collect no longer return it (spec.md §3 "Lifecycles", §4.7 "purge
// ... does not necessarily free memory").
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	d, ok := r.devices[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	d.flags.clear(FlagListed)
	d.flags.set(FlagHalted)
	destroyable := d.destroyable()
	if destroyable {
		delete(r.devices, name)
		d.queue.close()
	}
	r.mu.Unlock()

	r.cond.Broadcast()
}

// Find returns the device with the given name, if listed and not
// halted. A halted-but-kept-alive device (spec.md §3 "Lifecycles": an
// open handle keeps its memory alive past Remove) must not be handed
// out to a new caller, only to the caller that already holds it.
func (r *Registry) Find(name string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[name]
	if !ok || d.flags.has(FlagHalted) {
		return nil, false
	}
	return d, ok
}

// Collect returns a snapshot of all devices whose flags match every bit
// in mask (spec.md §4.1: "snapshot for callers that must iterate
// without holding the lock long"). Halted devices are never returned,
// even if mask happens to match their remaining flags, since Remove
// already unlisted them for new callers.
func (r *Registry) Collect(mask Flag) []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		if d.flags.has(FlagHalted) {
			continue
		}
		if d.flags.has(mask) {
			out = append(out, d)
		}
	}
	return out
}

// Size returns the number of devices in the index, including halted
// devices that Remove kept because they were not yet destroyable.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// Purge removes every device through the delete path (spec.md §4.7:
// "on engine stop, purge all devices; each purge goes through the
// delete path").
func (r *Registry) Purge() {
	r.mu.Lock()
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	r.mu.Unlock()

	for _, name := range names {
		r.Remove(name)
	}
}

// NotifyInitScanFinished records discovery's "initial scan finished"
// notification and wakes readiness waiters.
func (r *Registry) NotifyInitScanFinished() {
	r.mu.Lock()
	r.initScanFinished = true
	r.mu.Unlock()
	r.cond.Broadcast()
}

// BroadcastReady wakes table_cond waiters; call whenever a device's
// INIT_WAIT flag clears.
func (r *Registry) BroadcastReady() {
	r.cond.Broadcast()
}

// ready implements spec.md §4.1's readiness predicate:
// collect(INIT_WAIT) == 0 AND discovery initial scan complete.
func (r *Registry) ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initScanFinished {
		return false
	}
	for _, d := range r.devices {
		if d.flags.has(FlagInitWait) {
			return false
		}
	}
	return true
}

// WaitReady blocks until the readiness predicate holds or timeout
// elapses, returning false on timeout (spec.md §4.1: "synchronize
// against readiness with a timeout, default 5s").
func (r *Registry) WaitReady(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	for !r.readyLocked() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		waitWithTimeout(r.cond, remaining)
	}
	return true
}

func (r *Registry) readyLocked() bool {
	if !r.initScanFinished {
		return false
	}
	for _, d := range r.devices {
		if d.flags.has(FlagInitWait) {
			return false
		}
	}
	return true
}

// waitWithTimeout calls cond.Wait(), guaranteeing it returns within d by
// arranging a timer that broadcasts; sync.Cond has no native timed
// wait. Must be called with cond.L held, matching cond.Wait()'s own
// contract.
func waitWithTimeout(cond *sync.Cond, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		cond.L.Lock()
		cond.Broadcast()
		cond.L.Unlock()
	})
	defer timer.Stop()

	cond.Wait()
}
