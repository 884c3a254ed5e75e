// Package catalog holds catalog records and the providers that fetch them.
package catalog

import (
	"math"

	"github.com/litescript/ls-skyfield/internal/astro"
)

// UndefinedPositionAngle is the catalog sentinel for a missing position angle.
const UndefinedPositionAngle = 32767

// Object is one catalog record. Missing numeric values are NaN.
type Object struct {
	ID       string
	RA       float64 // degrees
	Dec      float64 // degrees
	MajAxis  float64 // arcminutes
	MinAxis  float64 // arcminutes
	PosAngle float64 // degrees, north through east
	OType    string
	U        float64
	B        float64
	V        float64
	Parallax float64 // mas
	PMRA     float64 // mas/yr
	PMDec    float64 // mas/yr
	SpType   string
}

// NewObject returns an Object with every numeric field marked missing.
func NewObject(id string, ra, dec float64) Object {
	nan := math.NaN()
	return Object{
		ID: id, RA: ra, Dec: dec,
		MajAxis: nan, MinAxis: nan, PosAngle: nan,
		U: nan, B: nan, V: nan,
		Parallax: nan, PMRA: nan, PMDec: nan,
	}
}

// Coord returns the object's position.
func (o Object) Coord() astro.SkyCoord {
	return astro.SkyCoord{RAdeg: o.RA, DecDeg: o.Dec}
}

// PositionAngle returns the position angle and whether it is defined. The
// sentinel value, NaN and infinities all count as undefined.
func (o Object) PositionAngle() (float64, bool) {
	return NormalizePositionAngle(o.PosAngle)
}

// NormalizePositionAngle maps both undefined conventions to (0, false).
func NormalizePositionAngle(pa float64) (float64, bool) {
	if math.IsNaN(pa) || math.IsInf(pa, 0) || pa == UndefinedPositionAngle {
		return 0, false
	}
	return pa, true
}
