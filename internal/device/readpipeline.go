package device

import (
	"io"
)

// DecoderFactory constructs a fresh Decoder for the given frame format;
// internal/rasterdecode supplies the concrete JPEG/PNG implementation.
type DecoderFactory func(format ColorMode) Decoder

// beginStart implements the frontend-facing half of spec.md §4.5
// "start": if a prior job is still producing but already has at least
// one buffered image, the new start reuses it; otherwise it resets job
// state and kicks off the operation chain on the event-loop thread.
func (d *Device) beginStart(decoderFactory DecoderFactory) Status {
	d.mu.Lock()
	working := d.state.load().IsWorking()
	hasImage := d.queue.len() > 0
	d.mu.Unlock()

	if working && hasImage {
		d.flags.set(FlagReading)
		return StatusGood
	}

	d.mu.Lock()
	d.decoder = decoderFactory(d.options.Selections.ColorMode)
	d.frontend = d.options.DeriveFrontendParams()
	d.mu.Unlock()

	stateBefore := d.state.load()
	d.loop.Call(d.startScan)

	d.mu.Lock()
	for d.state.load() == stateBefore {
		d.cond.Wait()
	}
	d.mu.Unlock()

	d.flags.set(FlagReading)
	return StatusGood
}

// readResult is what read() returns to the frontend.
type readResult struct {
	N      int
	Status Status
}

// read implements spec.md §4.5's "read(max_len) -> (bytes, status)".
func (d *Device) read(buf []byte, nonBlocking bool) readResult {
	if !d.flags.has(FlagReading) {
		return readResult{Status: StatusInval}
	}

	if d.decodingImage == nil {
		img, ok := d.waitForImage(nonBlocking)
		if !ok {
			return d.noImageResult(nonBlocking)
		}
		if err := d.beginImage(img); err != nil {
			if purge := d.job.setStatus(StatusIOError); purge {
				d.queue.purge()
			}
			d.requestCancel()
			return readResult{Status: StatusIOError}
		}
	}

	return d.drainInto(buf)
}

// waitForImage blocks (unless nonBlocking) until an image is queued or
// the operation chain stops producing. Returns ok=false if no image
// will ever arrive for this job.
func (d *Device) waitForImage(nonBlocking bool) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		if img, ok := d.queue.pop(); ok {
			return img, true
		}
		working := d.state.load().IsWorking()
		if !working {
			return nil, false
		}
		if nonBlocking {
			return nil, false
		}
		d.cond.Wait()
	}
}

func (d *Device) noImageResult(nonBlocking bool) readResult {
	if nonBlocking && d.state.load().IsWorking() {
		return readResult{N: 0, Status: StatusGood}
	}
	status := d.job.currentStatus()
	if status == StatusGood {
		status = StatusEOF
	}
	d.flags.clear(FlagReading)
	return readResult{Status: status}
}

// beginImage starts decoding a freshly-popped encoded image, validates
// its format against the promised frontend params, computes the
// clipping window, and primes the one-line buffer (spec.md §4.5).
func (d *Device) beginImage(img []byte) error {
	d.decoder.Reset()
	if err := d.decoder.Begin(img); err != nil {
		return err
	}

	params, err := d.decoder.Params()
	if err != nil {
		return err
	}

	d.mu.Lock()
	fp := d.frontend
	skipX, skipY := d.job.skip()
	d.mu.Unlock()

	bpp := d.decoder.BytesPerPixel()
	if _, err := d.decoder.SetWindow(Window{
		XOff: skipX, YOff: skipY,
		Width: params.PixelsPerLine, Height: params.Lines,
	}); err != nil {
		return err
	}

	lineLen := fp.BytesPerLine
	if actual := params.PixelsPerLine * bpp; actual > lineLen {
		lineLen = actual
	}
	d.lineBuf = make([]byte, lineLen)
	for i := range d.lineBuf {
		d.lineBuf[i] = 0xFF
	}

	d.decodingImage = img
	d.lineCursor = 0
	d.lineEnd = params.Lines
	d.skipLines = skipY
	d.readSkipBytes = skipX * bpp
	return nil
}

// drainInto decodes lines into buf until it is full or the image ends.
func (d *Device) drainInto(buf []byte) readResult {
	n := 0
	for n < len(buf) {
		if d.lineCursor >= d.lineEnd {
			return d.endOfImage(n)
		}

		line := d.lineBuf
		if d.lineCursor < d.skipLines {
			// Synthesized padding line: already 0xFF-filled.
		} else {
			read, err := d.decoder.ReadLine(line)
			if err == io.EOF {
				return d.endOfImage(n)
			}
			if err != nil {
				if purge := d.job.setStatus(StatusIOError); purge {
					d.queue.purge()
				}
				d.requestCancel()
				return readResult{N: n, Status: StatusIOError}
			}
			_ = read
		}

		// Each line delivers exactly BytesPerLine bytes: the decoded line
		// after its readSkipBytes leading bytes, cut to BytesPerLine or
		// padded with 0xFF up to it.
		start := d.readSkipBytes
		if start > len(line) {
			start = len(line)
		}
		row := line[start:]
		if bpl := d.frontend.BytesPerLine; len(row) > bpl {
			row = row[:bpl]
		}
		copied := copy(buf[n:], row)
		n += copied
		for pad := len(row); pad < d.frontend.BytesPerLine && n < len(buf); pad++ {
			buf[n] = 0xFF
			n++
		}
		d.lineCursor++
	}
	return readResult{N: n, Status: StatusGood}
}

func (d *Device) endOfImage(delivered int) readResult {
	d.decodingImage = nil
	d.decoder.Reset()

	if delivered > 0 {
		return readResult{N: delivered, Status: StatusGood}
	}

	status := d.job.currentStatus()
	if status == StatusGood {
		status = StatusEOF
	}
	d.flags.clear(FlagReading)
	return readResult{Status: status}
}
