// Package grid builds RA/Dec coordinate grid lines in pixel space.
package grid

import (
	"math"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// DefaultCount is the default number of lines per axis.
const DefaultCount = 6

// Label rotations used when a line is too short to estimate a slope.
const (
	FallbackRARotation  = -90.0
	FallbackDecRotation = 0.0
)

// Label anchors sit slightly off the line's middle sample.
var (
	raLabelOffset  = wcs.Pixel{X: -15, Y: -10}
	decLabelOffset = wcs.Pixel{X: 20, Y: -15}
)

// Axis names the coordinate held constant along a line.
type Axis string

const (
	AxisRA  Axis = "ra"
	AxisDec Axis = "dec"
)

// Line is one grid line: constant RA or constant Dec.
type Line struct {
	Axis   Axis        `json:"axis"`
	Value  float64     `json:"value"` // degrees
	Points []wcs.Pixel `json:"points"`
}

// Label annotates a grid line.
type Label struct {
	Axis     Axis    `json:"axis"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"` // degrees
}

// Grid holds the lines and labels for one image.
type Grid struct {
	RALines  []Line  `json:"ra_lines"`
	DecLines []Line  `json:"dec_lines"`
	Labels   []Label `json:"labels"`
}

// Options set the number of lines per axis.
type Options struct {
	RACount  int
	DecCount int
}

// DefaultOptions returns a 6 by 6 grid.
func DefaultOptions() Options {
	return Options{RACount: DefaultCount, DecCount: DefaultCount}
}

// Generate builds RACount lines of constant RA, each sampled at DecCount
// declinations, and DecCount lines of constant Dec, each sampled at RACount
// right ascensions, spanning the field's RA/Dec box. Sample points that do
// not project are left out of the line.
func Generate(a *wcs.Adapter, field fov.Field, opts Options) Grid {
	if opts.RACount < 1 {
		opts.RACount = DefaultCount
	}
	if opts.DecCount < 1 {
		opts.DecCount = DefaultCount
	}

	ras := linspace(field.RAMin, field.RAMax, opts.RACount)
	decs := linspace(field.DecMin, field.DecMax, opts.DecCount)

	var g Grid
	for _, ra := range ras {
		coords := make([]astro.SkyCoord, len(decs))
		for i, dec := range decs {
			coords[i] = astro.SkyCoord{RAdeg: ra, DecDeg: dec}
		}
		pix := a.WorldToPixel(coords)
		g.RALines = append(g.RALines, Line{Axis: AxisRA, Value: ra, Points: finitePoints(pix)})
		if l, ok := label(pix, FallbackRARotation, raLabelOffset); ok {
			l.Axis, l.Text = AxisRA, astro.FormatRA(ra)
			g.Labels = append(g.Labels, l)
		}
	}

	for _, dec := range decs {
		coords := make([]astro.SkyCoord, len(ras))
		for i, ra := range ras {
			coords[i] = astro.SkyCoord{RAdeg: ra, DecDeg: dec}
		}
		pix := a.WorldToPixel(coords)
		g.DecLines = append(g.DecLines, Line{Axis: AxisDec, Value: dec, Points: finitePoints(pix)})
		if l, ok := label(pix, FallbackDecRotation, decLabelOffset); ok {
			l.Axis, l.Text = AxisDec, astro.FormatDec(dec)
			g.Labels = append(g.Labels, l)
		}
	}
	return g
}

// label anchors at the middle sample and takes its rotation from the two
// samples either side of it.
func label(pix []wcs.Pixel, fallback float64, offset wcs.Pixel) (Label, bool) {
	n := len(pix)
	mid := n / 2
	if n == 0 || !pix[mid].IsFinite() {
		return Label{}, false
	}

	rot := fallback
	if mid > 1 && mid < n-1 && pix[mid-1].IsFinite() && pix[mid+1].IsFinite() {
		dx := pix[mid+1].X - pix[mid-1].X
		dy := pix[mid+1].Y - pix[mid-1].Y
		rot = math.Atan2(dy, dx) * 180 / math.Pi
	}

	return Label{
		X:        pix[mid].X + offset.X,
		Y:        pix[mid].Y + offset.Y,
		Rotation: rot,
	}, true
}

func finitePoints(pix []wcs.Pixel) []wcs.Pixel {
	out := make([]wcs.Pixel, 0, len(pix))
	for _, p := range pix {
		if p.IsFinite() {
			out = append(out, p)
		}
	}
	return out
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
