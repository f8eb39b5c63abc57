// Package discovery browses mDNS for eSCL scanner endpoints.
//
// Discovery is treated as an external collaborator by the device scanning
// core: this package only turns raw mDNS service entries into
// ScannerService values and a pair of added/removed channels. It does not
// know about Device, the registry, or the state machine — internal/device's
// lifecycle glue bridges the two.
package discovery
