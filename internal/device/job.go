package device

import "sync"

// jobTracker implements spec.md §4.4's sticky job status rules: status
// is monotonic except CANCELLED always wins, and a non-cancel error is
// only recorded if nothing has been delivered yet and no status has been
// recorded yet (the first error wins).
type jobTracker struct {
	mu       sync.Mutex
	status   Status
	received int
	skipX    int
	skipY    int
	set      bool // whether status has ever been explicitly set
}

func newJobTracker() *jobTracker {
	return &jobTracker{status: StatusGood}
}

// reset clears job state for a new start() call: status back to GOOD,
// received count and skip to zero. The job URI lives on Device and is
// cleared by startScan.
func (j *jobTracker) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusGood
	j.received = 0
	j.skipX = 0
	j.skipY = 0
	j.set = false
}

// setStatus applies spec.md §4.4's precedence rules. It returns true if
// the queue should be purged (CANCELLED was just set).
func (j *jobTracker) setStatus(s Status) (purge bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if s == StatusGood {
		return false
	}
	if s == StatusCancelled {
		j.status = StatusCancelled
		j.set = true
		return true
	}
	if j.received > 0 || j.set {
		// First non-cancel error wins; once anything was delivered, or
		// a status is already recorded, later errors are dropped.
		return false
	}
	j.status = s
	j.set = true
	return false
}

func (j *jobTracker) recordImage() {
	j.mu.Lock()
	j.received++
	j.mu.Unlock()
}

func (j *jobTracker) receivedCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.received
}

func (j *jobTracker) currentStatus() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *jobTracker) setSkip(x, y int) {
	j.mu.Lock()
	j.skipX, j.skipY = x, y
	j.mu.Unlock()
}

func (j *jobTracker) skip() (x, y int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.skipX, j.skipY
}

// finish applies the "zero images and no sticky error" default from
// spec.md §4.3 step 3: "if zero images were received and no sticky
// error is set, default job status to IO error."
func (j *jobTracker) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.received == 0 && !j.set {
		j.status = StatusIOError
		j.set = true
	}
}
