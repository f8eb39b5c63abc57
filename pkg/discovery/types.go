package discovery

import (
	"errors"
	"strconv"
	"time"
)

// Service type constants for mDNS. eSCL scanners advertise under
// "_uscan._tcp" (plain HTTP) or "_uscans._tcp" (HTTPS).
const (
	// ServiceTypeESCL is the service type for eSCL scanners over HTTP.
	ServiceTypeESCL = "_uscan._tcp"

	// ServiceTypeESCLSecure is the service type for eSCL scanners over HTTPS.
	ServiceTypeESCLSecure = "_uscans._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// TXT record key constants, per the Bonjour Printing/Scanning specs.
const (
	TXTKeyUUID           = "UUID"           // device UUID
	TXTKeyResourcePath   = "rs"             // resource path, e.g. "eSCL"
	TXTKeyModel          = "ty"             // model / friendly name
	TXTKeyNote           = "note"           // user-assigned location note
	TXTKeyRepresentation = "representation" // icon URL
	TXTKeyPDL            = "pdl"            // comma-separated supported MIME types
	TXTKeyAdminURL       = "adminurl"       // admin web page, if any
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for one-shot browse operations.
	BrowseTimeout = 10 * time.Second
)

// Discovery errors.
var (
	ErrMissingRequired = errors.New("missing required TXT field")
	ErrBrowseTimeout   = errors.New("browse timeout")
)

// ScannerService describes one eSCL scanner discovered (or lost) on the
// network.
type ScannerService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the advertised hostname.
	Host string

	// Port is the advertised port.
	Port uint16

	// Addresses are the resolved IP addresses (aggregated across
	// interfaces for the same instance).
	Addresses []string

	// Secure is true when discovered under ServiceTypeESCLSecure.
	Secure bool

	// UUID is the device UUID, if advertised.
	UUID string

	// ResourcePath is the eSCL resource path (commonly "eSCL").
	ResourcePath string

	// Model is the advertised model / friendly name.
	Model string

	// Note is the user-assigned location note, if any.
	Note string

	// PDL lists supported document formats (MIME types), if advertised.
	PDL []string
}

// BaseURI returns the absolute HTTP(S) base URI for this service,
// trailing-slash normalized per the eSCL convention.
func (s *ScannerService) BaseURI() string {
	scheme := "http"
	if s.Secure {
		scheme = "https"
	}

	host := s.Host
	if host == "" && len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}

	path := s.ResourcePath
	if path == "" {
		path = "eSCL"
	}

	uri := scheme + "://" + host
	if s.Port != 0 {
		uri += portSuffix(scheme, s.Port)
	}
	uri += "/" + path
	if uri[len(uri)-1] != '/' {
		uri += "/"
	}
	return uri
}

func portSuffix(scheme string, port uint16) string {
	if (scheme == "http" && port == 80) || (scheme == "https" && port == 443) {
		return ""
	}
	return ":" + strconv.FormatUint(uint64(port), 10)
}
