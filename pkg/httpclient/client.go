package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexpevzner-fork/escl-scand/pkg/scanlog"
)

// Errors returned by Submit/Cancel.
var (
	ErrCancelled = errors.New("httpclient: request cancelled")
	ErrNotFound  = errors.New("httpclient: request id not found")
)

// Request describes one outbound HTTP request. URI must be absolute.
type Request struct {
	Method string
	URI    string
	Header http.Header
	Body   []byte
}

// Response is the outcome of a completed request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Callback is invoked exactly once per Submit, with either a Response or
// a non-nil error (never both).
type Callback func(*Response, error)

// Executor runs fn. The zero Executor (nil) runs fn synchronously on the
// client's internal goroutine; callers that need completions serialized
// onto a specific goroutine (the event loop) supply one.
type Executor func(fn func())

// Config configures a Client.
type Config struct {
	// HTTPClient is the underlying client. Defaults to a client with a
	// 30s per-request timeout if nil.
	HTTPClient *http.Client

	// Executor delivers callback invocations. Defaults to direct (inline)
	// execution on the goroutine that ran the request.
	Executor Executor

	// Logger receives submission/completion events, if non-nil.
	Logger scanlog.Logger

	// Device is the device name attached to log events.
	Device string
}

// Client is an async HTTP client: Submit returns immediately, the round
// trip runs in the background, and the result is delivered through the
// configured Executor.
type Client struct {
	httpClient *http.Client
	executor   Executor
	logger     scanlog.Logger
	device     string

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	onError  func(error)
}

// NewClient creates a Client from Config.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	exec := cfg.Executor
	if exec == nil {
		exec = func(fn func()) { fn() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = scanlog.NoopLogger{}
	}

	return &Client{
		httpClient: hc,
		executor:   exec,
		logger:     logger,
		device:     cfg.Device,
		inflight:   make(map[string]context.CancelFunc),
	}
}

// SetOnError installs a callback invoked whenever a submitted request
// fails at the transport level (connection refused, timeout, DNS
// failure, context cancellation is NOT reported here since it is always
// caller-initiated).
func (c *Client) SetOnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Submit starts req in the background and returns a request ID that can
// be passed to Cancel. cb is invoked exactly once, delivered through the
// client's Executor.
func (c *Client) Submit(ctx context.Context, req Request, cb Callback) string {
	id := uuid.New().String()
	reqCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.inflight[id] = cancel
	c.mu.Unlock()

	start := time.Now()
	c.logger.Log(scanlog.Event{
		Timestamp: start,
		Device:    c.device,
		RequestID: id,
		Direction: scanlog.DirectionOut,
		Layer:     scanlog.LayerTransport,
		Category:  scanlog.CategoryMessage,
		HTTP:      &scanlog.HTTPEvent{Method: req.Method, URI: req.URI, BodyLen: len(req.Body)},
	})

	go func() {
		resp, err := c.do(reqCtx, req)

		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()

		elapsed := time.Since(start)
		c.logEnd(id, req, resp, err, elapsed)

		if err != nil && reqCtx.Err() == nil {
			c.mu.Lock()
			onError := c.onError
			c.mu.Unlock()
			if onError != nil {
				c.executor(func() { onError(err) })
			}
		}

		c.executor(func() { cb(resp, err) })
	}()

	return id
}

func (c *Client) logEnd(id string, req Request, resp *Response, err error, elapsed time.Duration) {
	ev := scanlog.Event{
		Timestamp: time.Now(),
		Device:    c.device,
		RequestID: id,
		Direction: scanlog.DirectionIn,
		Layer:     scanlog.LayerTransport,
	}
	if err != nil {
		ev.Category = scanlog.CategoryError
		ev.Error = &scanlog.ErrorEventData{Message: err.Error(), Context: req.Method + " " + req.URI}
	} else {
		ev.Category = scanlog.CategoryMessage
		ev.HTTP = &scanlog.HTTPEvent{
			Method:         req.Method,
			URI:            req.URI,
			StatusCode:     resp.StatusCode,
			BodyLen:        len(resp.Body),
			ProcessingTime: &elapsed,
		}
	}
	c.logger.Log(ev)
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URI, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// Cancel cancels the in-flight request with the given ID. Returns
// ErrNotFound if no such request is in flight (it may already have
// completed).
func (c *Client) Cancel(id string) error {
	c.mu.Lock()
	cancel, ok := c.inflight[id]
	c.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	cancel()
	return nil
}

// CancelAll cancels every currently in-flight request.
func (c *Client) CancelAll() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.inflight))
	for _, cancel := range c.inflight {
		cancels = append(cancels, cancel)
	}
	c.inflight = make(map[string]context.CancelFunc)
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
