package device

// mmToPx converts a length in millimetres to pixels at the given
// reference resolution (pixels per inch), per spec.md §4.5.
func mmToPx(mm float64, unitsPerInch int) int {
	const mmPerInch = 25.4
	return int(mm / mmPerInch * float64(unitsPerInch))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// axisWindow is the result of the clipping computation for one axis:
// off/len are expressed in the protocol's reference units (the DPI the
// device's min/max lengths are given in); skip is expressed in actual
// scan-resolution pixels and applied at read time.
type axisWindow struct {
	Off  int
	Len  int
	Skip int
}

// computeAxisWindow implements spec.md §4.5's "Geometric computation"
// exactly: clamp the requested length to the device's supported range,
// then if the window still runs past max_len, slide it back into range
// and remember how many actual-resolution pixels were sliced off the
// front so the read pipeline can skip them.
func computeAxisWindow(tlMM, brMM float64, unitsPerInch, minLen, maxLen, resDPI int) axisWindow {
	off := mmToPx(tlMM, unitsPerInch)
	length := mmToPx(brMM-tlMM, unitsPerInch)

	lo := minLen
	if lo < 1 {
		lo = 1
	}
	length = clamp(length, lo, maxLen)

	skip := 0
	if off+length > maxLen {
		skip = off + length - maxLen
		off -= skip
		skip = skip * resDPI / unitsPerInch
	}

	return axisWindow{Off: off, Len: length, Skip: skip}
}
