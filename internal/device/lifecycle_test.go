package device

import (
	"context"
	"testing"
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/config"
	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/pkg/discovery"
	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
)

// fakeBrowser is a scripted discovery.Browser: the test feeds services
// into added/removed directly instead of running real mDNS.
type fakeBrowser struct {
	added   chan *discovery.ScannerService
	removed chan *discovery.ScannerService
	stopped chan struct{}
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		added:   make(chan *discovery.ScannerService, 4),
		removed: make(chan *discovery.ScannerService, 4),
		stopped: make(chan struct{}),
	}
}

func (b *fakeBrowser) BrowseScanners(ctx context.Context) (<-chan *discovery.ScannerService, <-chan *discovery.ScannerService, error) {
	return b.added, b.removed, nil
}

func (b *fakeBrowser) Stop() {
	close(b.stopped)
}

var _ discovery.Browser = (*fakeBrowser)(nil)

func newTestEngine(t *testing.T, browser discovery.Browser) (*Engine, *Registry) {
	t.Helper()
	loop := eloop.New()
	loop.Start()
	t.Cleanup(loop.Stop)

	http := httpclient.NewClient(httpclient.Config{})
	registry := NewRegistry(loop, http, nil)
	factory := func(protocol string) (ProtocolHandler, bool) { return &fakeHandler{}, protocol == "escl" }
	engine := NewEngine(registry, loop, factory, browser, nil)
	return engine, registry
}

func TestEngineOnFoundAddsDevice(t *testing.T) {
	browser := newFakeBrowser()
	engine, registry := newTestEngine(t, browser)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	browser.added <- &discovery.ScannerService{
		InstanceName: "printer-1",
		Addresses:    []string{"printer.local"},
		Port:         80,
		ResourcePath: "eSCL",
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if registry.Size() == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if got := registry.Size(); got != 1 {
		t.Fatalf("registry.Size() = %d, want 1 after onFound", got)
	}

	engine.Stop()
	if _, ok := registry.Find("printer-1"); ok {
		t.Error("Stop() should purge all devices")
	}
}

func TestEngineOnRemovedDropsDevice(t *testing.T) {
	browser := newFakeBrowser()
	engine, registry := newTestEngine(t, browser)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	svc := &discovery.ScannerService{InstanceName: "printer-1", Addresses: []string{"printer.local"}, Port: 80, ResourcePath: "eSCL"}
	browser.added <- svc

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && registry.Size() != 1 {
		time.Sleep(time.Millisecond)
	}

	browser.removed <- svc

	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := registry.Find("printer-1"); !ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if _, ok := registry.Find("printer-1"); ok {
		t.Error("device should be dropped once removed arrives")
	}

	engine.Stop()
}

func TestEngineSeedsStaticDevices(t *testing.T) {
	browser := newFakeBrowser()
	loop := eloop.New()
	loop.Start()
	t.Cleanup(loop.Stop)

	http := httpclient.NewClient(httpclient.Config{})
	registry := NewRegistry(loop, http, nil)
	statics := []config.StaticDevice{{Name: "static-1", URI: "http://printer.local/eSCL/", Protocol: "escl"}}
	factory := func(protocol string) (ProtocolHandler, bool) { return &fakeHandler{}, protocol == "escl" }

	NewEngine(registry, loop, factory, browser, statics)

	if _, ok := registry.Find("static-1"); !ok {
		t.Error("NewEngine should seed statically configured devices immediately")
	}
}

func TestEngineStopStopsBrowser(t *testing.T) {
	browser := newFakeBrowser()
	engine, _ := newTestEngine(t, browser)

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	engine.Stop()

	select {
	case <-browser.stopped:
	default:
		t.Error("Stop() should have called browser.Stop()")
	}
}
