package device

import (
	"os"
	"sync"
	"time"
)

// imageQueue is the MPSC queue of encoded image buffers described in
// spec.md §3 "read pipeline": the event loop is the sole producer, a
// frontend caller thread is the sole consumer. It never holds decoded
// data (spec.md §3 invariant: "the image queue never contains a decoded
// image").
type imageQueue struct {
	mu     sync.Mutex
	images [][]byte

	// pollable is a real, selectable signal: a pipe whose read end a
	// host integrating via select()/poll() can watch, mirroring
	// spec.md §4.6 "get select fd". A byte is written whenever the
	// queue or state changes; nothing reads the bytes back, so the read
	// end stays readable once it has been signalled.
	readFD, writeFD *os.File
}

func newImageQueue() *imageQueue {
	q := &imageQueue{}
	if r, w, err := os.Pipe(); err == nil {
		q.readFD, q.writeFD = r, w
	}
	return q
}

// push appends an encoded image and signals the pollable fd. Called
// only from the event-loop thread.
func (q *imageQueue) push(img []byte) {
	q.mu.Lock()
	q.images = append(q.images, img)
	q.mu.Unlock()
	q.signal()
}

// pop removes and returns the oldest queued image, or ok=false if
// empty. Called only from the caller thread.
func (q *imageQueue) pop() (img []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.images) == 0 {
		return nil, false
	}
	img = q.images[0]
	q.images = q.images[1:]
	return img, true
}

// len reports the number of queued, not-yet-decoding images.
func (q *imageQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.images)
}

// purge discards all queued images, used when job status becomes
// CANCELLED (spec.md §3 invariant: "only CANCELLED purges the queue").
func (q *imageQueue) purge() {
	q.mu.Lock()
	q.images = nil
	q.mu.Unlock()
}

// signal wakes anything polling the select fd by writing one byte.
// Errors (e.g. a full pipe buffer, meaning a signal is already
// pending) are expected and ignored.
func (q *imageQueue) signal() {
	if q.writeFD == nil {
		return
	}
	_ = q.writeFD.SetWriteDeadline(time.Now())
	_, _ = q.writeFD.Write([]byte{0})
	_ = q.writeFD.SetWriteDeadline(time.Time{})
}

// selectFD returns the read end of the pollable signal, or -1 if the
// platform pipe could not be created.
func (q *imageQueue) selectFD() int {
	if q.readFD == nil {
		return -1
	}
	return int(q.readFD.Fd())
}

func (q *imageQueue) close() {
	if q.readFD != nil {
		_ = q.readFD.Close()
	}
	if q.writeFD != nil {
		_ = q.writeFD.Close()
	}
}
