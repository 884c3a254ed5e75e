// Package photometry maps catalog photometry and classification to display
// values: colors, marker sizes and diagram coordinates.
package photometry

import (
	"crypto/md5"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color temperature limits of the chromaticity approximations, in kelvin.
const (
	MinTemperature = 1667.0
	MaxTemperature = 25000.0
)

// bluestBV is the pole of the Ballesteros fit. Bluer indices fall beyond it
// and are treated as the hottest temperature.
const bluestBV = -0.62 / 0.92

// BVTemperature estimates a blackbody temperature from a B-V color index
// (Ballesteros 2012), clamped to the range the chromaticity fit covers.
func BVTemperature(bv float64) float64 {
	if bv <= bluestBV {
		return MaxTemperature
	}
	t := 4600 * (1/(0.92*bv+1.7) + 1/(0.92*bv+0.62))
	return math.Max(MinTemperature, math.Min(MaxTemperature, t))
}

// chromaticity returns CIE 1931 x, y for a temperature using the cubic
// spline fit of Kim et al.
func chromaticity(t float64) (x, y float64) {
	t2, t3 := t*t, t*t*t
	if t <= 4000 {
		x = -0.2661239e9/t3 - 0.2343589e6/t2 + 0.8776956e3/t + 0.179910
	} else {
		x = -3.0258469e9/t3 + 2.1070379e6/t2 + 0.2226347e3/t + 0.240390
	}

	x2, x3 := x*x, x*x*x
	switch {
	case t <= 2222:
		y = -1.1063814*x3 - 1.34811020*x2 + 2.18555832*x - 0.20219683
	case t <= 4000:
		y = -0.9549476*x3 - 1.37418593*x2 + 2.09137015*x - 0.16748867
	default:
		y = 3.0817580*x3 - 5.87338670*x2 + 3.75112997*x - 0.37001483
	}
	return x, y
}

// bvColor converts a color index to sRGB via XYZ with Y = 1.
func bvColor(bv float64) colorful.Color {
	if math.IsNaN(bv) || math.IsInf(bv, 0) {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	x, y := chromaticity(BVTemperature(bv))
	return colorful.Xyz(x/y, 1, (1-x-y)/y).Clamped()
}

// BVToRGB approximates the color of a star with the given B-V index.
// Non-finite input gives white.
func BVToRGB(bv float64) color.RGBA {
	r, g, b := bvColor(bv).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// BVToHex is BVToRGB formatted as #rrggbb.
func BVToHex(bv float64) string {
	return bvColor(bv).Hex()
}

// TypeColor derives a stable marker color for an object type code from
// the first three bytes of its MD5 digest.
func TypeColor(code string) string {
	sum := md5.Sum([]byte(code))
	c := colorful.Color{
		R: float64(sum[0]) / 255,
		G: float64(sum[1]) / 255,
		B: float64(sum[2]) / 255,
	}
	return c.Hex()
}
