package device

import "testing"

func TestOptionStateSetDefaults(t *testing.T) {
	var o OptionState
	o.Caps = Capabilities{
		Sources:       []string{"Platen", "Feeder"},
		ColorModes:    []ColorMode{ColorModeGray, ColorModeRGB},
		Resolutions:   []int{150, 300, 600},
		MaxWidthMM:    215.9,
		MaxHeightMM:   297.0,
		DefaultSource: "Feeder",
	}
	o.SetDefaults()

	if o.Selections.Source != "Feeder" {
		t.Errorf("Source = %q, want Feeder (DefaultSource)", o.Selections.Source)
	}
	if o.Selections.ColorMode != ColorModeGray {
		t.Errorf("ColorMode = %q, want first capability entry", o.Selections.ColorMode)
	}
	if o.Selections.Resolution != 150 {
		t.Errorf("Resolution = %d, want first capability entry", o.Selections.Resolution)
	}
	if o.Selections.Geometry.BRX != 215.9 || o.Selections.Geometry.BRY != 297.0 {
		t.Error("default geometry should span the full platen")
	}
}

func TestOptionStateSetDefaultsFallsBackWithoutDefaultSource(t *testing.T) {
	var o OptionState
	o.Caps = Capabilities{Sources: []string{"Platen"}}
	o.SetDefaults()

	if o.Selections.Source != "Platen" {
		t.Errorf("Source = %q, want first listed source", o.Selections.Source)
	}
	if o.Selections.Resolution != 300 {
		t.Errorf("Resolution = %d, want 300 when capabilities list none", o.Selections.Resolution)
	}
}

func TestDeriveFrontendParamsBytesPerLine(t *testing.T) {
	var o OptionState
	o.Caps = Capabilities{
		UnitsPerInch: 300,
		MaxWidthMM:   25.4, // exactly 300px at 300dpi
		MaxHeightMM:  25.4,
	}
	o.Selections = Selections{
		ColorMode:  ColorModeRGB,
		Resolution: 300,
		Geometry:   Geometry{BRX: 25.4, BRY: 25.4},
	}

	fp := o.DeriveFrontendParams()
	if fp.PixelsPerLine != 300 {
		t.Errorf("PixelsPerLine = %d, want 300", fp.PixelsPerLine)
	}
	if fp.BytesPerLine != 300*3 {
		t.Errorf("BytesPerLine = %d, want %d (RGB24)", fp.BytesPerLine, 300*3)
	}
}

func TestBytesPerPixel(t *testing.T) {
	cases := map[ColorMode]int{
		ColorModeRGB:           3,
		ColorModeGray:          1,
		ColorModeBlackAndWhite: 1,
	}
	for mode, want := range cases {
		if got := bytesPerPixel(mode); got != want {
			t.Errorf("bytesPerPixel(%s) = %d, want %d", mode, got, want)
		}
	}
}
