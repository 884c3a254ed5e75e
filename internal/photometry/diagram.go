package photometry

import (
	"math"
	"strings"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// LightYearsPerParsec converts parsecs to light years.
const LightYearsPerParsec = 3.26156

// Point is one object on a classification diagram.
type Point struct {
	ID            string     `json:"name"`
	X             float64    `json:"x"`
	Y             float64    `json:"y"`
	Size          float64    `json:"size"`
	Color         string     `json:"color"`
	SpectralClass *string    `json:"spectral_class"`
	ObjectType    string     `json:"object_type"`
	Code          string     `json:"code"`
	Pixel         *wcs.Pixel `json:"pixel,omitempty"`
	DistanceLy    *float64   `json:"distance_ly,omitempty"`
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// HRDiagram places objects with B and V magnitudes and a positive parallax
// on a color-magnitude diagram: x is B-V, y is V - 5 log10(100/parallax).
// The adapter is optional; when given, each point carries its image
// position if it projects.
func HRDiagram(objs []catalog.Object, a *wcs.Adapter, d *catalog.Descriptors) []Point {
	var out []Point
	for _, o := range objs {
		if !(o.Parallax > 0) {
			continue
		}
		x := o.B - o.V
		y := o.V - 5*math.Log10(100/o.Parallax)
		if !finite(x) || !finite(y) {
			continue
		}
		p := newPoint(o, x, y, a, d)
		p.Color = BVToHex(x)
		ly := 1000 / o.Parallax * LightYearsPerParsec
		p.DistanceLy = &ly
		out = append(out, p)
	}
	return out
}

// ProperMotionDiagram places objects with measured proper motion at
// (pmRA, pmDec) in mas/yr.
func ProperMotionDiagram(objs []catalog.Object, a *wcs.Adapter, d *catalog.Descriptors) []Point {
	var out []Point
	for _, o := range objs {
		if !finite(o.PMRA) || !finite(o.PMDec) {
			continue
		}
		p := newPoint(o, o.PMRA, o.PMDec, a, d)
		if bv := o.B - o.V; finite(bv) {
			p.Color = BVToHex(bv)
		} else {
			p.Color = TypeColor(o.OType)
		}
		if o.Parallax > 0 {
			ly := 1000 / o.Parallax * LightYearsPerParsec
			p.DistanceLy = &ly
		}
		out = append(out, p)
	}
	return out
}

func newPoint(o catalog.Object, x, y float64, a *wcs.Adapter, d *catalog.Descriptors) Point {
	p := Point{
		ID:         o.ID,
		X:          x,
		Y:          y,
		Size:       LuminositySize(o.SpType),
		ObjectType: d.Lookup(o.OType),
		Code:       o.OType,
	}
	if sp := strings.TrimSpace(o.SpType); sp != "" {
		p.SpectralClass = &sp
	}
	if a != nil {
		if px := a.SkyToPixel(o.Coord()); px.IsFinite() {
			p.Pixel = &px
		}
	}
	return p
}
