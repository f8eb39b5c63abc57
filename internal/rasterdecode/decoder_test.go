package rasterdecode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/alexpevzner-fork/escl-scand/internal/device"
)

func encodeTestPNG(t *testing.T, w, h int, fill color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecoderBeginAndParams(t *testing.T) {
	data := encodeTestPNG(t, 4, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	d := New()
	if err := d.Begin(data); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	params, err := d.Params()
	if err != nil {
		t.Fatalf("Params() error = %v", err)
	}
	if params.PixelsPerLine != 4 || params.Lines != 3 {
		t.Errorf("Params() = %+v, want 4x3", params)
	}
}

func TestDecoderReadLineRoundTrip(t *testing.T) {
	data := encodeTestPNG(t, 2, 2, color.RGBA{R: 100, G: 150, B: 200, A: 255})

	d := New()
	if err := d.Begin(data); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := d.SetWindow(device.Window{}); err != nil {
		t.Fatalf("SetWindow() error = %v", err)
	}

	buf := make([]byte, d.BytesPerPixel()*2)
	n, err := d.ReadLine(buf)
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if n != len(buf) {
		t.Fatalf("ReadLine() n = %d, want %d", n, len(buf))
	}
	if buf[0] != 100 || buf[1] != 150 || buf[2] != 200 {
		t.Errorf("ReadLine() bytes = %v, want [100 150 200 ...]", buf[:3])
	}

	// Second line should decode without error.
	if _, err := d.ReadLine(buf); err != nil {
		t.Fatalf("second ReadLine() error = %v", err)
	}

	// Third ReadLine call is past the image height: EOF.
	if _, err := d.ReadLine(buf); err != io.EOF {
		t.Errorf("ReadLine() past image end = %v, want io.EOF", err)
	}
}

func TestDecoderResetClearsState(t *testing.T) {
	data := encodeTestPNG(t, 2, 2, color.RGBA{A: 255})
	d := New()
	if err := d.Begin(data); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	d.Reset()

	if _, err := d.Params(); err == nil {
		t.Error("Params() after Reset() should error")
	}
}

func TestDecoderBeginRejectsGarbage(t *testing.T) {
	d := New()
	if err := d.Begin([]byte("not an image")); err == nil {
		t.Error("Begin() with non-image data should error")
	}
}
