// Package device is the device scanning core: the registry of known
// scanners, the endpoint prober, the per-device scan state machine, the
// job tracker, and the read pipeline that turns queued encoded images
// into decoded raster lines for a frontend caller.
//
// See SPEC_FULL.md §3-5 for the data model, component design, and
// concurrency model this package implements.
package device
