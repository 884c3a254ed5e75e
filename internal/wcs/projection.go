package wcs

import (
	"math"
	"strings"
)

// Projection is a FITS celestial projection code.
type Projection string

// Supported projections.
const (
	TAN Projection = "TAN" // gnomonic
	SIN Projection = "SIN" // orthographic
	STG Projection = "STG" // stereographic
	ZEA Projection = "ZEA" // zenithal equal-area
	ARC Projection = "ARC" // zenithal equidistant
	CAR Projection = "CAR" // plate carrée
	MER Projection = "MER" // Mercator
	AIT Projection = "AIT" // Hammer-Aitoff
)

var knownProjections = map[Projection]bool{
	TAN: true, SIN: true, STG: true, ZEA: true,
	ARC: true, CAR: true, MER: true, AIT: true,
}

// ParseProjection extracts the projection code from a CTYPE value such as
// "RA---TAN" or "RA---TAN-SIP". Unknown or missing codes yield TAN.
func ParseProjection(ctype string) Projection {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(ctype)), "-")
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		if knownProjections[Projection(p)] {
			return Projection(p)
		}
		break
	}
	return TAN
}

// Valid reports whether p is a supported projection code.
func (p Projection) Valid() bool {
	return knownProjections[p]
}

// zenithal projections put the native reference point at the pole.
func (p Projection) zenithal() bool {
	switch p {
	case TAN, SIN, STG, ZEA, ARC:
		return true
	}
	return false
}

// theta0 is the native latitude of the reference point.
func (p Projection) theta0() float64 {
	if p.zenithal() {
		return 90
	}
	return 0
}

// project maps native spherical (phi, theta) to intermediate world
// coordinates (x, y), all in degrees.
func (p Projection) project(phi, theta float64) (x, y float64, ok bool) {
	if p.zenithal() {
		var r float64
		switch p {
		case TAN:
			if theta <= 0 {
				return 0, 0, false
			}
			r = rad2deg * cosd(theta) / sind(theta)
		case SIN:
			if theta < 0 {
				return 0, 0, false
			}
			r = rad2deg * cosd(theta)
		case STG:
			if theta <= -90 {
				return 0, 0, false
			}
			r = 2 * rad2deg * tand((90-theta)/2)
		case ZEA:
			r = 2 * rad2deg * sind((90-theta)/2)
		case ARC:
			r = 90 - theta
		}
		return r * sind(phi), -r * cosd(phi), true
	}

	phi = wrap180(phi)
	switch p {
	case CAR:
		return phi, theta, true
	case MER:
		if math.Abs(theta) >= 90 {
			return 0, 0, false
		}
		return phi, rad2deg * math.Log(tand((90+theta)/2)), true
	case AIT:
		gamma := rad2deg * math.Sqrt(2/(1+cosd(theta)*cosd(phi/2)))
		return 2 * gamma * cosd(theta) * sind(phi/2), gamma * sind(theta), true
	}
	return 0, 0, false
}

// deproject maps intermediate world coordinates back to native spherical
// coordinates.
func (p Projection) deproject(x, y float64) (phi, theta float64, ok bool) {
	if p.zenithal() {
		r := math.Hypot(x, y)
		if r != 0 {
			phi = atan2d(x, -y)
		}
		switch p {
		case TAN:
			theta = atan2d(rad2deg, r)
		case SIN:
			s := r / rad2deg
			if s > 1 {
				return 0, 0, false
			}
			theta = acosd(s)
		case STG:
			theta = 90 - 2*atand(r/(2*rad2deg))
		case ZEA:
			s := r / (2 * rad2deg)
			if s > 1 {
				return 0, 0, false
			}
			theta = 90 - 2*asind(s)
		case ARC:
			if r > 180 {
				return 0, 0, false
			}
			theta = 90 - r
		}
		return phi, theta, true
	}

	switch p {
	case CAR:
		if math.Abs(y) > 90 {
			return 0, 0, false
		}
		return x, y, true
	case MER:
		return x, 2*atand(math.Exp(y/rad2deg)) - 90, true
	case AIT:
		u := 1 - math.Pow(math.Pi*x/720, 2) - math.Pow(math.Pi*y/360, 2)
		if u < 0.5 {
			return 0, 0, false
		}
		z := math.Sqrt(u)
		phi = 2 * atan2d(math.Pi*z*x/360, 2*z*z-1)
		s := math.Pi * y * z / 180
		if math.Abs(s) > 1 {
			return 0, 0, false
		}
		return phi, asind(s), true
	}
	return 0, 0, false
}

const rad2deg = 180 / math.Pi

func sind(d float64) float64 { return math.Sin(d / rad2deg) }
func cosd(d float64) float64 { return math.Cos(d / rad2deg) }
func tand(d float64) float64 { return math.Tan(d / rad2deg) }
func asind(v float64) float64 { return math.Asin(v) * rad2deg }
func acosd(v float64) float64 { return math.Acos(v) * rad2deg }
func atand(v float64) float64 { return math.Atan(v) * rad2deg }
func atan2d(y, x float64) float64 { return math.Atan2(y, x) * rad2deg }

// wrap180 maps an angle into (-180, 180].
func wrap180(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
