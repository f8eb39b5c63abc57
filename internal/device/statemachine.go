package device

import (
	"context"
	"net/http"
	"time"

	"github.com/alexpevzner-fork/escl-scand/internal/eloop"
	"github.com/alexpevzner-fork/escl-scand/pkg/httpclient"
)

const (
	retryMaxAttempts = 10
	retryInterval    = time.Second
)

// startScan begins the operation chain for a new job: it resets the job
// tracker, clears the previous job URI, enters SCANNING and submits SCAN;
// the rest of the chain runs from the replies (spec.md §4.5 step 2).
// Must run on the event-loop thread.
func (d *Device) startScan() {
	d.job.reset()

	d.mu.Lock()
	d.jobURI = ""
	x, y := d.options.clippingWindows()
	d.mu.Unlock()
	d.job.setSkip(x.Skip, y.Skip)

	d.failed = 0
	d.setState(StateScanning)
	d.submit(OpScan)
}

// submit builds and sends the request for op, dispatching the decoded
// reply back through advance.
func (d *Device) submit(op Operation) {
	d.mu.Lock()
	handler := d.protocol
	ctx := OpContext{BaseURI: d.baseURI, JobURI: d.jobURI, Options: d.options}
	d.curOp = op
	d.mu.Unlock()

	if handler == nil {
		d.advance(OpResult{NextOp: OpFinish, Status: StatusIOError})
		return
	}

	var (
		req httpclient.Request
		err error
	)

	switch op {
	case OpScan:
		req, err = d.buildRequest(handler.BuildScan, ctx)
	case OpLoad:
		req, err = d.buildRequest(handler.BuildLoad, ctx)
	case OpStatus:
		req, err = d.buildRequest(handler.BuildStatus, ctx)
	case OpCancel:
		req, err = d.buildRequest(handler.BuildCancel, ctx)
	case OpCleanup:
		req, err = d.buildRequest(handler.BuildCleanup, ctx)
	default:
		d.advance(OpResult{NextOp: OpFinish, Status: StatusIOError})
		return
	}

	if err != nil {
		d.advance(OpResult{NextOp: OpFinish, Status: StatusIOError})
		return
	}

	d.reqID = d.http.Submit(context.Background(), req, func(resp *httpclient.Response, submitErr error) {
		d.loop.Call(func() { d.onReply(op, resp, submitErr) })
	})
}

func (d *Device) buildRequest(build func(context.Context, OpContext) (HTTPRequest, error), ctx OpContext) (httpclient.Request, error) {
	hr, err := build(context.Background(), ctx)
	if err != nil {
		return httpclient.Request{}, err
	}
	header := make(http.Header, len(hr.Header))
	for k, v := range hr.Header {
		header.Set(k, v)
	}
	return httpclient.Request{
		Method: hr.Method,
		URI:    ctx.BaseURI + hr.Path,
		Header: header,
		Body:   hr.Body,
	}, nil
}

func (d *Device) onReply(op Operation, resp *httpclient.Response, err error) {
	if err == httpclient.ErrCancelled {
		return // superseded by a cancel; the cancel path drives the state
	}

	d.mu.Lock()
	handler := d.protocol
	d.mu.Unlock()

	if err != nil || handler == nil {
		d.advance(OpResult{NextOp: OpFinish, Status: StatusIOError})
		return
	}

	var (
		result OpResult
		decErr error
	)
	switch op {
	case OpScan:
		result, decErr = handler.DecodeScan(resp.Body, resp.Header, resp.StatusCode)
		if decErr == nil && result.Status == StatusGood && result.JobURI != "" {
			d.mu.Lock()
			d.jobURI = result.JobURI
			d.mu.Unlock()
			d.failed = 0
		}
	case OpLoad:
		result, decErr = handler.DecodeLoad(resp.Body, resp.StatusCode)
		if decErr == nil && result.Status == StatusGood && result.Image != nil {
			d.queue.push(result.Image)
			d.job.recordImage()
			d.failed = 0
		}
	case OpStatus:
		result, decErr = handler.DecodeStatus(resp.Body, resp.StatusCode)
	case OpCancel, OpCleanup:
		result, decErr = handler.DecodeFinish(resp.Body, resp.StatusCode)
	}

	if decErr != nil {
		result = OpResult{NextOp: OpFinish, Status: StatusIOError}
	}

	d.advance(result)
}

// advance applies the orchestration rules of spec.md §4.3's "Operation
// chain" to one decoded OpResult. Must run on the event-loop thread.
func (d *Device) advance(result OpResult) {
	if result.Status != StatusGood && result.Status != StatusCancelled {
		if purge := d.job.setStatus(result.Status); purge {
			d.queue.purge()
		}
	}

	if result.NextOp == OpFinish {
		d.job.finish()
		d.finishChain()
		return
	}

	cur := d.state.load()
	if cur == StateCancelWait {
		d.mu.Lock()
		haveJobURI := d.jobURI != ""
		d.mu.Unlock()
		if haveJobURI {
			d.setState(StateCancelling)
			d.submit(OpCancel)
		} else {
			if purge := d.job.setStatus(StatusCancelled); purge {
				d.queue.purge()
			}
			d.job.finish()
			d.finishChain()
		}
		return
	}

	switch result.NextOp {
	case OpCancel:
		d.setState(StateCancelling)
	case OpCleanup:
		d.setState(StateCleanup)
	}

	if result.Delay > 0 {
		if d.failed >= retryMaxAttempts {
			d.advance(OpResult{NextOp: OpFinish, Status: StatusIOError})
			return
		}
		d.failed++
		op := result.NextOp
		var timer *eloop.Timer
		timer = d.loop.AfterFunc(time.Duration(result.Delay)*time.Millisecond, func() {
			d.mu.Lock()
			if d.retryTimer == timer {
				d.retryTimer = nil
			}
			d.mu.Unlock()
			d.submit(op)
		})
		d.mu.Lock()
		d.retryTimer = timer
		d.mu.Unlock()
		return
	}

	d.submit(result.NextOp)
}

// stopRetryTimer cancels any pending retry timer so a CANCEL/CLEANUP
// request already in flight can't race against a stale op resubmitted
// by an earlier retry (spec.md §5 "at most one in-flight HTTP request
// per device").
func (d *Device) stopRetryTimer() {
	d.mu.Lock()
	t := d.retryTimer
	d.retryTimer = nil
	d.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

// finishChain transitions SCANNING..CLEANUP to DONE once the operation
// chain has nothing left to run.
func (d *Device) finishChain() {
	d.setState(StateDone)
}

// requestCancel implements the frontend cancel() call (spec.md §4.3):
// a compare-and-set from SCANNING to CANCEL_REQ, then arming the
// cancel event. Other states are a silent no-op.
func (d *Device) requestCancel() {
	if !d.state.compareAndSwap(StateScanning, StateCancelReq) {
		return
	}
	d.stopRetryTimer()
	d.broadcastState()
	if d.cancelEvt != nil {
		d.cancelEvt.Arm()
	}
}

// onCancelDelivered runs on the event-loop thread once the cancel event
// fires: CANCEL_REQ transitions to CANCELLING (if a job resource
// exists) or CANCEL_WAIT otherwise (spec.md §4.3).
func (d *Device) onCancelDelivered() {
	if d.state.load() != StateCancelReq {
		return
	}
	d.stopRetryTimer()

	// The event is one-shot: install a fresh one for the next job's cancel.
	d.cancelEvt = eloop.NewCancelEvent()
	d.loop.Watch(d.cancelEvt, d.onCancelDelivered)

	if purge := d.job.setStatus(StatusCancelled); purge {
		d.queue.purge()
	}

	d.mu.Lock()
	haveJobURI := d.jobURI != ""
	d.mu.Unlock()

	if haveJobURI {
		d.setState(StateCancelling)
		d.http.Cancel(d.reqID)
		d.submit(OpCancel)
	} else {
		d.setState(StateCancelWait)
	}
}
