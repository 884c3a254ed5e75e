// Package fov derives an image's field of view on the sky.
package fov

import (
	"math"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// Field is the sky region covered by an image.
type Field struct {
	RAMin  float64           `json:"ra_min"`
	RAMax  float64           `json:"ra_max"`
	DecMin float64           `json:"dec_min"`
	DecMax float64           `json:"dec_max"`
	Center astro.SkyCoord    `json:"center"`
	Radius float64           `json:"radius"` // degrees
	Corner [4]astro.SkyCoord `json:"-"`
}

// Resolve projects the image corners (0,0), (w,0), (w,h) and (0,h) and
// derives the bounding box, the centre (the solution reference point) and
// the search radius: the largest centre-to-corner separation.
func Resolve(width, height int, a *wcs.Adapter) Field {
	w, h := float64(width), float64(height)
	corners := a.PixelToWorld([]wcs.Pixel{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}})

	f := Field{
		RAMin:  math.Inf(1),
		RAMax:  math.Inf(-1),
		DecMin: math.Inf(1),
		DecMax: math.Inf(-1),
		Center: a.Solution().Reference(),
	}
	for i, c := range corners {
		f.Corner[i] = c
		if !c.IsFinite() {
			continue
		}
		f.RAMin = math.Min(f.RAMin, c.RAdeg)
		f.RAMax = math.Max(f.RAMax, c.RAdeg)
		f.DecMin = math.Min(f.DecMin, c.DecDeg)
		f.DecMax = math.Max(f.DecMax, c.DecDeg)
		f.Radius = math.Max(f.Radius, f.Center.Separation(c))
	}
	return f
}

// Valid reports whether at least one corner projected to the sky.
func (f Field) Valid() bool {
	return f.RAMin <= f.RAMax && f.DecMin <= f.DecMax
}

// BoxRadius is half the larger of the RA and Dec spans, for callers that
// only have the bounding box.
func (f Field) BoxRadius() float64 {
	return math.Max(math.Abs(f.RAMax-f.RAMin), math.Abs(f.DecMax-f.DecMin)) / 2
}

// Contains reports whether a position lies strictly inside the RA/Dec box.
// This is a rectangular test in equatorial coordinates and does not handle
// fields that cross RA 0 or contain a pole.
func (f Field) Contains(c astro.SkyCoord) bool {
	return c.RAdeg > f.RAMin && c.RAdeg < f.RAMax && c.DecDeg > f.DecMin && c.DecDeg < f.DecMax
}
