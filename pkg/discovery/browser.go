package discovery

import (
	"context"
	"net"

	"github.com/enbility/zeroconf/v3/api"
)

// Browser browses for eSCL scanner services.
type Browser interface {
	// BrowseScanners searches for eSCL scanners, both over HTTP and HTTPS.
	// Returns two channels: added (newly found services; new addresses of
	// an already reported service are merged into it and not sent again)
	// and removed (services that disappeared). Both are closed when ctx
	// is done.
	BrowseScanners(ctx context.Context) (added, removed <-chan *ScannerService, err error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface restricts browsing to one network interface. Empty means
	// all interfaces.
	Interface string

	// ConnectionFactory creates multicast connections. Set in tests to
	// inject mock connections.
	ConnectionFactory api.ConnectionFactory

	// InterfaceProvider lists network interfaces. Set in tests to inject
	// a mock interface list.
	InterfaceProvider api.InterfaceProvider
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{}
}

func (c *BrowserConfig) resolveInterface() (*net.Interface, error) {
	if c.Interface == "" {
		return nil, nil
	}
	return net.InterfaceByName(c.Interface)
}

// mergeAddresses appends any addresses in add not already present in base.
func mergeAddresses(base, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, a := range base {
		seen[a] = struct{}{}
	}
	for _, a := range add {
		if _, ok := seen[a]; !ok {
			base = append(base, a)
			seen[a] = struct{}{}
		}
	}
	return base
}

// removeAddress removes addr from addrs, if present.
func removeAddress(addrs []string, addr string) []string {
	out := addrs[:0]
	for _, a := range addrs {
		if a != addr {
			out = append(out, a)
		}
	}
	return out
}
