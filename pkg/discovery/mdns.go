package discovery

import (
	"context"
	"net"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser for eSCL scanners.
func NewMDNSBrowser(config BrowserConfig) (*MDNSBrowser, error) {
	return &MDNSBrowser{config: config}, nil
}

// BrowseScanners searches for eSCL scanners over both service types.
// Services are aggregated by instance name; addresses discovered on
// multiple interfaces are merged into a single entry.
func (b *MDNSBrowser) BrowseScanners(ctx context.Context) (added, removed <-chan *ScannerService, err error) {
	ctx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		cancel()
		return nil, nil, nil
	}
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	addedCh := make(chan *ScannerService)
	removedCh := make(chan *ScannerService)

	plainEntries, plainRemoved := make(chan *zeroconf.ServiceEntry), make(chan *zeroconf.ServiceEntry)
	secureEntries, secureRemoved := make(chan *zeroconf.ServiceEntry), make(chan *zeroconf.ServiceEntry)

	opts, err := b.browserOptions()
	if err != nil {
		cancel()
		return nil, nil, err
	}

	go func() {
		defer close(addedCh)
		defer close(removedCh)

		services := make(map[string]*ScannerService)

		handleEntry := func(entry *zeroconf.ServiceEntry, secure bool) {
			svc := entryToScanner(entry, secure)
			if svc == nil {
				return
			}
			if existing, found := services[svc.InstanceName]; found {
				existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
				return
			}
			services[svc.InstanceName] = svc
			select {
			case addedCh <- svc:
			case <-ctx.Done():
			}
		}

		handleRemoved := func(entry *zeroconf.ServiceEntry) {
			existing, found := services[entry.Instance]
			if !found {
				return
			}
			for _, a := range entryAddresses(entry) {
				existing.Addresses = removeAddress(existing.Addresses, a)
			}
			if len(existing.Addresses) == 0 {
				delete(services, entry.Instance)
				select {
				case removedCh <- existing:
				case <-ctx.Done():
				}
			}
		}

		for {
			select {
			case entry, ok := <-plainEntries:
				if !ok {
					plainEntries = nil
					break
				}
				handleEntry(entry, false)
			case entry, ok := <-secureEntries:
				if !ok {
					secureEntries = nil
					break
				}
				handleEntry(entry, true)
			case entry, ok := <-plainRemoved:
				if ok {
					handleRemoved(entry)
				}
			case entry, ok := <-secureRemoved:
				if ok {
					handleRemoved(entry)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() { _ = zeroconf.Browse(ctx, ServiceTypeESCL, Domain, plainEntries, plainRemoved, opts...) }()
	go func() { _ = zeroconf.Browse(ctx, ServiceTypeESCLSecure, Domain, secureEntries, secureRemoved, opts...) }()

	return addedCh, removedCh, nil
}

// Stop stops all active browse operations started by this browser.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

func (b *MDNSBrowser) browserOptions() ([]zeroconf.ClientOption, error) {
	var opts []zeroconf.ClientOption

	iface, err := b.config.resolveInterface()
	if err != nil {
		return nil, err
	}
	if iface != nil {
		opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
	}
	if b.config.ConnectionFactory != nil {
		opts = append(opts, zeroconf.WithClientConnFactory(b.config.ConnectionFactory))
	}
	if b.config.InterfaceProvider != nil {
		opts = append(opts, zeroconf.WithClientInterfaceProvider(b.config.InterfaceProvider))
	}
	return opts, nil
}

func entryToScanner(entry *zeroconf.ServiceEntry, secure bool) *ScannerService {
	txt := StringsToTXTRecords(entry.Text)
	svc := DecodeScannerTXT(txt)

	svc.InstanceName = entry.Instance
	svc.Host = entry.HostName
	svc.Port = uint16(entry.Port)
	svc.Secure = secure
	svc.Addresses = entryAddresses(entry)

	return &svc
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}
