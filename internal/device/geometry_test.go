package device

import "testing"

func TestMmToPx(t *testing.T) {
	got := mmToPx(25.4, 300)
	if got != 300 {
		t.Errorf("mmToPx(25.4mm, 300dpi) = %d, want 300", got)
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 1, 10); got != 5 {
		t.Errorf("clamp(5,1,10) = %d, want 5", got)
	}
	if got := clamp(-3, 1, 10); got != 1 {
		t.Errorf("clamp(-3,1,10) = %d, want 1", got)
	}
	if got := clamp(99, 1, 10); got != 10 {
		t.Errorf("clamp(99,1,10) = %d, want 10", got)
	}
}

func TestComputeAxisWindowWithinBounds(t *testing.T) {
	// A request fully inside [0, maxLen] needs no skip.
	w := computeAxisWindow(0, 100, 300, 1, 2550, 300)
	if w.Skip != 0 {
		t.Errorf("Skip = %d, want 0 for an in-bounds window", w.Skip)
	}
	if w.Off != 0 {
		t.Errorf("Off = %d, want 0", w.Off)
	}
}

// TestComputeAxisWindowClipsBeyondRightEdge is the "clip beyond right
// edge" scenario from spec.md §8: a window whose off+len exceeds
// max_len must be slid back into range, with skip expressed in
// actual-resolution pixels.
func TestComputeAxisWindowClipsBeyondRightEdge(t *testing.T) {
	const unitsPerInch = 300
	maxLen := mmToPx(210, unitsPerInch) // roughly A4 width at 300dpi reference

	// Request a window starting near the right edge whose length pushes
	// it past maxLen.
	tl := 200.0 // mm
	br := 250.0 // mm, runs past the 210mm (maxLen) edge

	w := computeAxisWindow(tl, br, unitsPerInch, 1, maxLen, unitsPerInch)

	if w.Off+w.Len != maxLen {
		t.Errorf("Off+Len = %d, want exactly maxLen (%d) after clipping", w.Off+w.Len, maxLen)
	}
	if w.Skip <= 0 {
		t.Errorf("Skip = %d, want > 0 when the window was slid back", w.Skip)
	}
}

func TestComputeAxisWindowClampsTooShort(t *testing.T) {
	// A requested length below minLen must be clamped up to minLen.
	w := computeAxisWindow(0, 0.1, 300, 50, 2550, 300)
	if w.Len != 50 {
		t.Errorf("Len = %d, want 50 (clamped to minLen)", w.Len)
	}
}

func TestComputeAxisWindowDifferentResolution(t *testing.T) {
	// At half the reference resolution, skip pixels should scale down
	// proportionally.
	const unitsPerInch = 300
	maxLen := mmToPx(210, unitsPerInch)

	w300 := computeAxisWindow(200, 250, unitsPerInch, 1, maxLen, unitsPerInch)
	w150 := computeAxisWindow(200, 250, unitsPerInch, 1, maxLen, unitsPerInch/2)

	if w150.Skip >= w300.Skip {
		t.Errorf("skip at half resolution (%d) should be less than at full resolution (%d)", w150.Skip, w300.Skip)
	}
}
