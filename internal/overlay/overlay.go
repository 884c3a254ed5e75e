// Package overlay computes pixel-space ellipses for catalog objects.
package overlay

import (
	"math"
	"sort"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/photometry"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// DefaultMinRadius is the smallest semi-axis, in pixels, worth displaying.
const DefaultMinRadius = 25.0

// paStep is the celestial offset used to find an object's on-image
// orientation: one arcsecond.
const paStep = 1.0 / 3600

// Record is one object's overlay ellipse.
type Record struct {
	ID       string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	RX       float64 `json:"rx"`
	RY       float64 `json:"ry"`
	Rotation float64 `json:"angle"`
	Type     string  `json:"otype"`
	Code     string  `json:"code"`
	Color    string  `json:"color"`
}

// Options tune overlay generation.
type Options struct {
	MinRadius float64 // records with both semi-axes below this are dropped
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{MinRadius: DefaultMinRadius}
}

// Dropped counts the records removed at each stage.
type Dropped struct {
	OutsideField int `json:"outside_field"`
	Duplicate    int `json:"duplicate"`
	NonFinite    int `json:"non_finite"`
	TooSmall     int `json:"too_small"`
}

// Result holds the overlay records in display order.
type Result struct {
	Records []Record `json:"records"`
	Dropped Dropped  `json:"dropped"`
}

// Compute filters objs to the field's RA/Dec box, merges duplicate IDs,
// and converts each object to a pixel ellipse. Records are ordered by major
// then minor axis, largest first.
func Compute(objs []catalog.Object, field fov.Field, a *wcs.Adapter, d *catalog.Descriptors, opts Options) Result {
	var res Result

	inside := make([]catalog.Object, 0, len(objs))
	for _, o := range objs {
		if !field.Contains(o.Coord()) {
			res.Dropped.OutsideField++
			continue
		}
		inside = append(inside, o)
	}

	merged := dedupe(inside)
	res.Dropped.Duplicate = len(inside) - len(merged)
	sortByAxes(merged)

	coords := make([]astro.SkyCoord, len(merged))
	for i, o := range merged {
		coords[i] = o.Coord()
	}
	pix := a.WorldToPixel(coords)
	scale := a.PixelScaleArcsecPerPixel()

	for i, o := range merged {
		p := pix[i]
		if !p.IsFinite() {
			res.Dropped.NonFinite++
			continue
		}
		rx := semiAxis(o.MajAxis, scale)
		ry := semiAxis(o.MinAxis, scale)
		if rx < opts.MinRadius && ry < opts.MinRadius {
			res.Dropped.TooSmall++
			continue
		}
		rot, ok := rotation(a, o, p)
		if !ok {
			res.Dropped.NonFinite++
			continue
		}
		res.Records = append(res.Records, Record{
			ID:       o.ID,
			X:        p.X,
			Y:        p.Y,
			RX:       rx,
			RY:       ry,
			Rotation: rot,
			Type:     d.Lookup(o.OType),
			Code:     o.OType,
			Color:    photometry.TypeColor(o.OType),
		})
	}
	return res
}

// semiAxis converts an angular diameter in arcminutes to a pixel semi-axis.
// Missing sizes become 0.
func semiAxis(arcmin, scale float64) float64 {
	v := arcmin * 60 / scale / 2
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// rotation estimates the pixel-frame angle of the object's position angle
// by projecting a one-arcsecond step along it. An undefined position angle
// gives exactly 0.
func rotation(a *wcs.Adapter, o catalog.Object, at wcs.Pixel) (float64, bool) {
	pa, ok := o.PositionAngle()
	if !ok {
		return 0, true
	}
	step := a.SkyToPixel(o.Coord().Offset(pa, paStep))
	if !step.IsFinite() {
		return 0, false
	}
	return math.Atan2(step.Y-at.Y, step.X-at.X) * 180 / math.Pi, true
}

// dedupe merges records sharing an ID. The first record's categorical
// fields win; angular sizes take the maximum seen.
func dedupe(objs []catalog.Object) []catalog.Object {
	index := make(map[string]int, len(objs))
	out := make([]catalog.Object, 0, len(objs))
	for _, o := range objs {
		i, seen := index[o.ID]
		if !seen {
			index[o.ID] = len(out)
			out = append(out, o)
			continue
		}
		out[i].MajAxis = maxFinite(out[i].MajAxis, o.MajAxis)
		out[i].MinAxis = maxFinite(out[i].MinAxis, o.MinAxis)
	}
	return out
}

func maxFinite(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}

// sortByAxes orders by major axis then minor axis, descending, with
// missing sizes last.
func sortByAxes(objs []catalog.Object) {
	sort.SliceStable(objs, func(i, j int) bool {
		if c := compareDesc(objs[i].MajAxis, objs[j].MajAxis); c != 0 {
			return c < 0
		}
		return compareDesc(objs[i].MinAxis, objs[j].MinAxis) < 0
	})
}

// compareDesc orders larger values first and NaN after everything.
func compareDesc(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
