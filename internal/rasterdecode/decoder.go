// Package rasterdecode implements device.Decoder over image/jpeg and
// image/png, the two raster formats eSCL scanners commonly return for
// NextDocument replies. No ecosystem library in the example pack
// parses JPEG/PNG frames line-by-line; encoding/image/jpeg/png are the
// standard-library justification recorded in DESIGN.md.
package rasterdecode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/alexpevzner-fork/escl-scand/internal/device"
)

var errNotBegun = errors.New("rasterdecode: Begin not called")

// Decoder decodes a single JPEG or PNG image buffer into raster lines
// on demand, satisfying device.Decoder. It decodes the whole frame
// eagerly in Begin (image/jpeg and image/png offer no incremental
// line API) and serves ReadLine from the in-memory image.Image,
// which still matches the pull-driven contract the read pipeline
// requires.
type Decoder struct {
	img    image.Image
	format device.ColorMode
	window device.Window
	line   int
}

// New returns an empty Decoder ready for Begin.
func New() *Decoder { return &Decoder{} }

func (d *Decoder) Begin(encoded []byte) error {
	img, format, err := decodeAny(encoded)
	if err != nil {
		return err
	}
	d.img = img
	d.format = format
	bounds := img.Bounds()
	d.window = device.Window{Width: bounds.Dx(), Height: bounds.Dy()}
	d.line = 0
	return nil
}

func decodeAny(encoded []byte) (image.Image, device.ColorMode, error) {
	if img, err := jpeg.Decode(bytes.NewReader(encoded)); err == nil {
		return img, formatOf(img), nil
	}
	img, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, "", err
	}
	return img, formatOf(img), nil
}

func formatOf(img image.Image) device.ColorMode {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return device.ColorModeGray
	default:
		return device.ColorModeRGB
	}
}

func (d *Decoder) Params() (device.DecodedParams, error) {
	if d.img == nil {
		return device.DecodedParams{}, errNotBegun
	}
	b := d.img.Bounds()
	return device.DecodedParams{
		Format:        d.format,
		PixelsPerLine: b.Dx(),
		Lines:         b.Dy(),
		Depth:         8,
	}, nil
}

func (d *Decoder) BytesPerPixel() int {
	if d.format == device.ColorModeGray || d.format == device.ColorModeBlackAndWhite {
		return 1
	}
	return 3
}

func (d *Decoder) SetWindow(win device.Window) (device.Window, error) {
	if d.img == nil {
		return device.Window{}, errNotBegun
	}
	bounds := d.img.Bounds()
	if win.Width <= 0 {
		win.Width = bounds.Dx() - win.XOff
	}
	if win.Height <= 0 {
		win.Height = bounds.Dy() - win.YOff
	}
	d.window = win
	return win, nil
}

func (d *Decoder) ReadLine(buf []byte) (int, error) {
	if d.img == nil {
		return 0, errNotBegun
	}
	if d.line >= d.window.Height {
		return 0, io.EOF
	}

	bounds := d.img.Bounds()
	y := bounds.Min.Y + d.window.YOff + d.line
	bpp := d.BytesPerPixel()

	n := 0
	for x := 0; x < d.window.Width && n+bpp <= len(buf); x++ {
		r, g, b, _ := d.img.At(bounds.Min.X+d.window.XOff+x, y).RGBA()
		switch bpp {
		case 1:
			buf[n] = byte(r >> 8)
			n++
		default:
			buf[n] = byte(r >> 8)
			buf[n+1] = byte(g >> 8)
			buf[n+2] = byte(b >> 8)
			n += 3
		}
	}

	d.line++
	return n, nil
}

func (d *Decoder) Reset() {
	d.img = nil
	d.line = 0
	d.window = device.Window{}
}

var _ device.Decoder = (*Decoder)(nil)
