package device

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alexpevzner-fork/escl-scand/internal/config"
	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/pkg/discovery"
)

// Engine ties the registry, the endpoint prober, and discovery together
// (spec.md §4.7 "Registry lifecycle & discovery glue").
type Engine struct {
	Registry *Registry
	loop     *eloop.Loop
	prober   *prober
	browser  discovery.Browser
	cancel   context.CancelFunc
	group    *errgroup.Group
}

// NewEngine wires a Registry to a protocol factory and discovery
// browser, and seeds it with the statically configured devices.
func NewEngine(registry *Registry, loop *eloop.Loop, factory ProtocolFactory, browser discovery.Browser, statics []config.StaticDevice) *Engine {
	e := &Engine{
		Registry: registry,
		loop:     loop,
		browser:  browser,
	}
	e.prober = newProber(factory, func(name string) { registry.Remove(name) }, registry.BroadcastReady)

	for _, sd := range statics {
		eps := []Endpoint{{URI: sd.URI, Protocol: string(sd.Protocol)}}
		d := registry.Add(sd.Name, eps, true)
		loop.Call(func() { e.prober.start(d) })
	}

	return e
}

// Start begins discovery and wires its events into the registry
// (spec.md §4.7: "found(name, init_scan?, endpoints)", "removed(name)",
// "init_scan_finished()").
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	added, removed, err := e.browser.BrowseScanners(ctx)
	if err != nil {
		cancel()
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	e.group = group

	group.Go(func() error {
		for {
			select {
			case svc, ok := <-added:
				if !ok {
					added = nil
					continue
				}
				e.onFound(svc)
			case svc, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				e.onRemoved(svc)
			case <-groupCtx.Done():
				return nil
			}
			if added == nil && removed == nil {
				return nil
			}
		}
	})

	return nil
}

func (e *Engine) onFound(svc *discovery.ScannerService) {
	protocol := "escl"
	eps := []Endpoint{{URI: svc.BaseURI(), Protocol: protocol}}

	e.loop.Call(func() {
		d := e.Registry.Add(svc.InstanceName, eps, false)
		e.prober.start(d)
	})
}

func (e *Engine) onRemoved(svc *discovery.ScannerService) {
	e.loop.Call(func() {
		e.Registry.Remove(svc.InstanceName)
	})
}

// NotifyInitScanFinished should be invoked once the browser reports its
// first full mDNS sweep is complete. zeroconf has no native "initial
// scan done" event, so the CLI entry point calls this after an initial
// BrowseTimeout delay.
func (e *Engine) NotifyInitScanFinished() {
	e.Registry.NotifyInitScanFinished()
}

// Stop implements spec.md §4.7's "on engine stop, purge all devices":
// stop discovery, wait for its event-forwarding goroutine to exit, then
// purge every device through Registry.Remove.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.browser != nil {
		e.browser.Stop()
	}
	if e.group != nil {
		_ = e.group.Wait()
	}
	e.Registry.Purge()
}
