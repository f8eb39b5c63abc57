package device

// DecodedParams describes the image a Decoder parsed out of Begin,
// before any window/clip is applied (spec.md §6 "To image decoder").
type DecodedParams struct {
	Format        ColorMode
	PixelsPerLine int
	Lines         int
	Depth         int
}

// Window is the pixel-space sub-rectangle a caller wants decoded,
// matching the decoder contract's set_window({x_off,y_off,wid,hei}).
type Window struct {
	XOff, YOff int
	Width      int
	Height     int
}

// Decoder is the image-decoder contract named in spec.md §6: begin,
// get_params, get_bytes_per_pixel, set_window, read_line, reset.
// internal/rasterdecode is this repo's JPEG/PNG implementation.
type Decoder interface {
	// Begin parses an encoded image buffer's header, preparing for
	// line-by-line decoding.
	Begin(encoded []byte) error

	// Params returns the image's natural dimensions and format.
	Params() (DecodedParams, error)

	// BytesPerPixel returns the decoded pixel stride in bytes.
	BytesPerPixel() int

	// SetWindow requests that decoding be clipped to win, returning the
	// window actually honored (a decoder may be unable to clip and
	// instead returns the full frame).
	SetWindow(win Window) (Window, error)

	// ReadLine decodes one line into buf, returning the number of bytes
	// written. Returns io.EOF once all requested lines are delivered.
	ReadLine(buf []byte) (int, error)

	// Reset releases any state so the decoder can Begin a new image.
	Reset()
}
