package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
	"github.com/alexpevzner-fork/escl-scand/pkg/scanlog"
)

// Device is the reference-counted per-scanner record described in
// spec.md §3: identity, flags, option state, the state machine, the
// protocol context, the endpoint list, job state, and the read
// pipeline. It is shared by the registry and any open frontend handle.
type Device struct {
	Name string

	refs  atomic.Int32
	flags flagSet
	state atomicState

	mu   sync.Mutex // guards fields below; held only briefly, never across I/O
	cond *sync.Cond // stm_cond: broadcast on every state change

	options OptionState

	endpoints []Endpoint
	epCursor  int

	protocol ProtocolHandler
	baseURI  string
	jobURI   string
	curOp    Operation
	reqID    string
	failed   int

	job   *jobTracker
	queue *imageQueue

	retryTimer *eloop.Timer // pending AfterFunc retry, if any; see advance

	decoder       Decoder
	decodingImage []byte
	lineBuf       []byte
	frontend      FrontendParams
	lineCursor    int
	lineEnd       int
	skipLines     int
	readSkipBytes int
	nonBlocking   bool

	cancelEvt *eloop.CancelEvent

	loop   *eloop.Loop
	http   *httpclient.Client
	logger scanlog.Logger
}

// newDevice constructs a Device with its invariants satisfied: LISTED
// set, state CLOSED, a fresh job tracker and image queue.
func newDevice(name string, endpoints []Endpoint, loop *eloop.Loop, http *httpclient.Client, logger scanlog.Logger) *Device {
	if logger == nil {
		logger = scanlog.NoopLogger{}
	}
	d := &Device{
		Name:      name,
		endpoints: endpoints,
		job:       newJobTracker(),
		queue:     newImageQueue(),
		loop:      loop,
		http:      http,
		logger:    logger,
	}
	d.cond = sync.NewCond(&d.mu)
	d.flags.set(FlagListed)
	d.state.store(StateClosed)
	return d
}

// AddRef increments the handle refcount. Safe from any goroutine
// (spec.md §5 "the device refcount uses atomic inc/dec").
func (d *Device) AddRef() { d.refs.Add(1) }

// Release decrements the handle refcount, returning the value after
// decrement. A Device is eligible for destruction once this reaches
// zero AND it is HALTED AND its state is CLOSED (spec.md §3
// "Lifecycles").
func (d *Device) Release() int32 { return d.refs.Add(-1) }

func (d *Device) refCount() int32 { return d.refs.Load() }

// destroyable reports whether this Device may be garbage collected by
// the registry: HALTED, CLOSED, and no open handles.
func (d *Device) destroyable() bool {
	return d.flags.has(FlagHalted) &&
		d.refCount() == 0 &&
		d.state.load() == StateClosed
}

// broadcastState wakes every waiter on stm_cond and signals the queue's
// select fd. It takes mu itself, so it must be called without mu held,
// right after a state store (spec.md §5's ordering guarantee:
// "state-machine state change is ordered-before its stm_cond broadcast").
func (d *Device) broadcastState() {
	d.mu.Lock()
	d.cond.Broadcast()
	d.mu.Unlock()
	d.queue.signal()
}

// setState stores the new state, logs the transition, and broadcasts
// the change.
func (d *Device) setState(s State) {
	old := d.state.load()
	d.state.store(s)
	d.logger.Log(scanlog.Event{
		Timestamp: time.Now(),
		Device:    d.Name,
		Direction: scanlog.DirectionIn,
		Layer:     scanlog.LayerStateMachine,
		Category:  scanlog.CategoryState,
		StateChange: &scanlog.StateChangeEvent{
			OldState: old.String(),
			NewState: s.String(),
		},
	})
	d.broadcastState()
}
