package astro

import (
	"fmt"
	"math"
)

// FormatRA renders a right ascension in degrees as hours, minutes and
// seconds (1h = 15°), e.g. "00h 40m 00.0s".
func FormatRA(raDeg float64) string {
	if !isFinite(raDeg) {
		return "--h --m --.-s"
	}
	hours := NormalizeAngle360(raDeg) / 15
	h := math.Floor(hours)
	minutes := (hours - h) * 60
	m := math.Floor(minutes)
	s := (minutes - m) * 60

	// Rounding to one decimal may carry into the next unit.
	if s >= 59.95 {
		s = 0
		m++
	}
	if m >= 60 {
		m = 0
		h++
	}
	if h >= 24 {
		h -= 24
	}
	return fmt.Sprintf("%02.0fh %02.0fm %04.1fs", h, m, s)
}

// FormatDec renders a declination in degrees as signed degrees and
// arcminutes, e.g. "+20°30′" or "-00°15′".
func FormatDec(decDeg float64) string {
	if !isFinite(decDeg) {
		return "---°--′"
	}
	sign := "+"
	if decDeg < 0 {
		sign = "-"
	}
	abs := math.Abs(decDeg)
	d := math.Floor(abs)
	m := math.Floor((abs - d) * 60)
	return fmt.Sprintf("%s%02.0f°%02.0f′", sign, d, m)
}
