package device

// ColorMode is the requested scan color format.
type ColorMode string

const (
	ColorModeBlackAndWhite ColorMode = "BlackAndWhite1"
	ColorModeGray          ColorMode = "Grayscale8"
	ColorModeRGB           ColorMode = "RGB24"
)

// Capabilities is the device-reported capability set that bounds and
// defaults the option state (spec.md §3 "option state").
type Capabilities struct {
	Sources       []string
	ColorModes    []ColorMode
	MinWidthMM    float64
	MinHeightMM   float64
	MaxWidthMM    float64
	MaxHeightMM   float64
	Resolutions   []int
	UnitsPerInch  int // reference DPI the device reports lengths in, usually 300
	DefaultSource string
}

// Geometry is the requested scan window in millimetres, top-left to
// bottom-right, matching the frontend's geometry option vocabulary.
type Geometry struct {
	TLX, TLY float64
	BRX, BRY float64
}

// Selections holds the caller's current option values. Selections
// persist across open/close (spec.md §3 "Lifecycles") but are reset to
// capability-derived defaults whenever new capabilities are parsed.
type Selections struct {
	Source     string
	ColorMode  ColorMode
	Geometry   Geometry
	Resolution int
}

// FrontendParams is the derived, read-only description of the image the
// next start() will produce, computed from Selections against
// Capabilities (spec.md §3 "derived frontend parameters").
type FrontendParams struct {
	Format        ColorMode
	PixelsPerLine int
	Lines         int
	BytesPerLine  int
	Depth         int
}

// OptionState bundles a device's capabilities and current selections,
// and derives FrontendParams and the per-axis clipping windows used by
// the read pipeline.
type OptionState struct {
	Caps       Capabilities
	Selections Selections
}

// SetDefaults resets Selections to capability-derived defaults, as
// happens whenever the prober parses a fresh capability document
// (spec.md §4.2).
func (o *OptionState) SetDefaults() {
	src := o.Caps.DefaultSource
	if src == "" && len(o.Caps.Sources) > 0 {
		src = o.Caps.Sources[0]
	}

	mode := ColorModeRGB
	if len(o.Caps.ColorModes) > 0 {
		mode = o.Caps.ColorModes[0]
	}

	res := 300
	if len(o.Caps.Resolutions) > 0 {
		res = o.Caps.Resolutions[0]
	}

	o.Selections = Selections{
		Source:    src,
		ColorMode: mode,
		Geometry: Geometry{
			TLX: 0, TLY: 0,
			BRX: o.Caps.MaxWidthMM,
			BRY: o.Caps.MaxHeightMM,
		},
		Resolution: res,
	}
}

// bytesPerPixel returns the byte stride of one pixel in the given mode.
func bytesPerPixel(mode ColorMode) int {
	switch mode {
	case ColorModeRGB:
		return 3
	case ColorModeGray:
		return 1
	case ColorModeBlackAndWhite:
		return 1
	default:
		return 3
	}
}

// clippingWindows computes the per-axis clipping windows implied by the
// current selections against the capability's min/max lengths, per
// spec.md §4.5's geometric computation. Lengths are expressed in pixels
// at Caps.UnitsPerInch; res is the selected scan resolution.
func (o *OptionState) clippingWindows() (x, y axisWindow) {
	units := o.Caps.UnitsPerInch
	if units == 0 {
		units = 300
	}
	res := o.Selections.Resolution
	if res == 0 {
		res = units
	}

	minW := mmToPx(o.Caps.MinWidthMM, units)
	maxW := mmToPx(o.Caps.MaxWidthMM, units)
	minH := mmToPx(o.Caps.MinHeightMM, units)
	maxH := mmToPx(o.Caps.MaxHeightMM, units)

	g := o.Selections.Geometry
	x = computeAxisWindow(g.TLX, g.BRX, units, minW, maxW, res)
	y = computeAxisWindow(g.TLY, g.BRY, units, minH, maxH, res)
	return x, y
}

// DeriveFrontendParams computes FrontendParams from the current
// selections, applying the clipping computation to get the final pixel
// dimensions that will be promised to the caller.
func (o *OptionState) DeriveFrontendParams() FrontendParams {
	x, y := o.clippingWindows()
	bpp := bytesPerPixel(o.Selections.ColorMode)

	return FrontendParams{
		Format:        o.Selections.ColorMode,
		PixelsPerLine: x.Len,
		Lines:         y.Len,
		BytesPerLine:  x.Len * bpp,
		Depth:         8,
	}
}
