package device

import (
	"context"

	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
)

// ProtocolFactory resolves a handler for a given protocol name; the
// registry lifecycle glue supplies the concrete binding (internal/escl
// registers "escl").
type ProtocolFactory func(protocol string) (ProtocolHandler, bool)

// prober drives endpoint probing for one device (spec.md §4.2): walk
// the candidate list in order, binding and querying each until one
// answers with valid capabilities, or the list is exhausted.
type prober struct {
	factory ProtocolFactory
	onGone  func(name string) // called when every endpoint failed
	onReady func()            // called whenever a device's INIT_WAIT flag clears
}

func newProber(factory ProtocolFactory, onGone func(string), onReady func()) *prober {
	return &prober{factory: factory, onGone: onGone, onReady: onReady}
}

// start begins probing d's endpoint list at the cursor. Must run on the
// event-loop thread.
func (p *prober) start(d *Device) {
	d.flags.set(FlagInitWait)
	p.tryNext(d)
}

func (p *prober) tryNext(d *Device) {
	d.mu.Lock()
	if d.epCursor >= len(d.endpoints) {
		d.mu.Unlock()
		p.fail(d)
		return
	}
	ep := d.endpoints[d.epCursor]
	d.epCursor++
	d.mu.Unlock()

	handler, ok := p.factory(ep.Protocol)
	if !ok {
		p.tryNext(d)
		return
	}

	uri := ep.URI
	if ep.Protocol == "escl" {
		uri = NormalizeEndpointURI(uri)
	}

	d.mu.Lock()
	d.protocol = handler
	d.baseURI = uri
	d.mu.Unlock()

	req, err := handler.BuildCaps(context.Background(), OpContext{BaseURI: uri})
	if err != nil {
		p.tryNext(d)
		return
	}

	d.reqID = d.http.Submit(context.Background(), httpclient.Request{
		Method: req.Method,
		URI:    uri + req.Path,
	}, func(resp *httpclient.Response, err error) {
		p.handleCapsReply(d, handler, resp, err)
	})
}

func (p *prober) handleCapsReply(d *Device, handler ProtocolHandler, resp *httpclient.Response, err error) {
	if err != nil {
		p.tryNext(d)
		return
	}

	caps, result, decErr := handler.DecodeCaps(resp.Body, resp.StatusCode)
	if decErr != nil || result.Status != StatusGood {
		p.tryNext(d)
		return
	}

	d.mu.Lock()
	d.options.Caps = caps
	d.options.SetDefaults()
	d.mu.Unlock()

	d.flags.set(FlagReady)
	d.flags.clear(FlagInitWait)
	if p.onReady != nil {
		p.onReady()
	}

	d.http.SetOnError(func(err error) {
		d.setStateIOError(err)
	})
}

func (p *prober) fail(d *Device) {
	d.flags.clear(FlagInitWait)
	if p.onReady != nil {
		p.onReady()
	}
	if p.onGone != nil {
		p.onGone(d.Name)
	}
}

// setStateIOError records a transport-level error as the job's sticky
// status. The client calls it for every failed request, in addition to
// that request's own callback (spec.md §6: "install an HTTP-level error
// callback on the client").
func (d *Device) setStateIOError(err error) {
	if purge := d.job.setStatus(StatusIOError); purge {
		d.queue.purge()
	}
}
