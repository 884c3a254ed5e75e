// Package astro provides celestial coordinate helpers and sky math.
package astro

import (
	"math"
)

// SkyCoord is an equatorial position on the celestial sphere.
type SkyCoord struct {
	RAdeg  float64 `json:"ra"`  // Right Ascension in degrees (0-360)
	DecDeg float64 `json:"dec"` // Declination in degrees (-90 to +90)
}

// IsFinite reports whether both components are finite numbers.
func (c SkyCoord) IsFinite() bool {
	return isFinite(c.RAdeg) && isFinite(c.DecDeg)
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := DegToRad(ra1)
	dec1Rad := DegToRad(dec1)
	ra2Rad := DegToRad(ra2)
	dec2Rad := DegToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if a > 1 {
		a = 1
	}

	c := 2 * math.Asin(math.Sqrt(a))

	return RadToDeg(c)
}

// Separation returns the angular distance between two coordinates in degrees.
func (c SkyCoord) Separation(o SkyCoord) float64 {
	return AngularSeparation(c.RAdeg, c.DecDeg, o.RAdeg, o.DecDeg)
}

// Offset returns the point reached by moving sepDeg along a great circle that
// leaves c at position angle paDeg (measured from North through East).
func (c SkyCoord) Offset(paDeg, sepDeg float64) SkyCoord {
	ra := DegToRad(c.RAdeg)
	dec := DegToRad(c.DecDeg)
	pa := DegToRad(paDeg)
	d := DegToRad(sepDeg)

	sinDec2 := math.Sin(dec)*math.Cos(d) + math.Cos(dec)*math.Sin(d)*math.Cos(pa)
	if sinDec2 > 1 {
		sinDec2 = 1
	} else if sinDec2 < -1 {
		sinDec2 = -1
	}
	dec2 := math.Asin(sinDec2)

	dRA := math.Atan2(math.Sin(pa)*math.Sin(d)*math.Cos(dec),
		math.Cos(d)-math.Sin(dec)*sinDec2)

	return SkyCoord{
		RAdeg:  NormalizeAngle360(RadToDeg(ra + dRA)),
		DecDeg: RadToDeg(dec2),
	}
}

// NormalizeAngle360 normalizes an angle to 0-360 degrees.
func NormalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
