package device

import "strings"

// Endpoint is one candidate base URI for a device's protocol handler
// (spec.md §4.2 "Endpoint Prober"): a device may advertise more than one
// address/port pair, and the prober tries them one at a time, in list
// order, until one answers.
type Endpoint struct {
	URI      string
	Protocol string
}

// NormalizeEndpointURI applies the eSCL trailing-slash rule noted in
// SPEC_FULL.md's supplemented features: resource paths built by joining
// the endpoint URI with an operation path ("ScannerCapabilities") must
// not collapse a missing separator, and must not double one up either.
func NormalizeEndpointURI(uri string) string {
	if !strings.HasSuffix(uri, "/") {
		return uri + "/"
	}
	return uri
}
