package device

import "context"

// Operation is a step in a protocol handler's operation chain
// (spec.md §6 "To protocol handler").
type Operation int

const (
	// OpNone is the zero value; never submitted.
	OpNone Operation = iota
	// OpCaps fetches scanner capabilities.
	OpCaps
	// OpScan starts a scan job; its reply carries the job resource URI.
	OpScan
	// OpLoad fetches the next page/image of an active job.
	OpLoad
	// OpStatus polls scanner/job status.
	OpStatus
	// OpCancel requests cancellation of the active job.
	OpCancel
	// OpCleanup releases server-side job resources after completion.
	OpCleanup
	// OpFinish is a sentinel meaning "no further operation"; it is
	// never submitted, only returned as a reply's next_op.
	OpFinish
)

// OpContext is everything a protocol handler needs to build a request
// or decode a reply for one operation.
type OpContext struct {
	BaseURI string
	JobURI  string // set once OpScan has returned a location
	Options OptionState
}

// OpResult is the decoded outcome of one protocol operation
// (spec.md §6 "To protocol handler"): which operation to run next, how
// long to delay before running it, the resulting status, and an
// optional payload (job URI for OpScan, encoded image bytes for
// OpLoad).
type OpResult struct {
	NextOp  Operation
	Delay   int // milliseconds; 0 means "submit next_op immediately"
	Status  Status
	JobURI  string // populated by OpScan's decoder
	Image   []byte // populated by OpLoad's decoder
}

// ProtocolHandler builds requests and decodes replies for each
// operation in a device's operation chain. It is the pluggable
// "protocol adapter" named in spec.md §4 — internal/escl is this
// repo's only concrete implementation.
type ProtocolHandler interface {
	// Name identifies the protocol family, e.g. "escl".
	Name() string

	BuildCaps(ctx context.Context, op OpContext) (HTTPRequest, error)
	DecodeCaps(body []byte, statusCode int) (Capabilities, OpResult, error)

	BuildScan(ctx context.Context, op OpContext) (HTTPRequest, error)
	DecodeScan(body []byte, header map[string][]string, statusCode int) (OpResult, error)

	BuildLoad(ctx context.Context, op OpContext) (HTTPRequest, error)
	DecodeLoad(body []byte, statusCode int) (OpResult, error)

	BuildStatus(ctx context.Context, op OpContext) (HTTPRequest, error)
	DecodeStatus(body []byte, statusCode int) (OpResult, error)

	BuildCancel(ctx context.Context, op OpContext) (HTTPRequest, error)
	BuildCleanup(ctx context.Context, op OpContext) (HTTPRequest, error)

	// DecodeFinish is the shared trivial decoder for CANCEL and CLEANUP
	// replies: both always resolve to next=FINISH (spec.md §6).
	DecodeFinish(body []byte, statusCode int) (OpResult, error)
}

// HTTPRequest is the minimal shape a protocol handler needs to produce;
// internal/escl builds these and the device package hands them to
// pkg/httpclient.
type HTTPRequest struct {
	Method string
	Path   string
	Header map[string]string
	Body   []byte
}
