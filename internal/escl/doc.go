// Package escl is the eSCL protocol adapter: it builds the XML/HTTP
// requests and decodes the XML/HTTP replies for the operation chain
// device.ProtocolHandler describes, against the wire format used by
// AirScan-compatible network scanners (ScannerCapabilities, ScanJobs,
// NextDocument, ScannerStatus, and job deletion for cancel/cleanup).
package escl
