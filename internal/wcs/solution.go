package wcs

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/litescript/ls-skyfield/internal/astro"
)

// Errors for WCS construction.
var (
	// ErrMissingAstrometrySolution means the image has not been plate-solved:
	// the header lacks a reference pixel.
	ErrMissingAstrometrySolution = errors.New("missing astrometry solution: plate solve the image first")

	// ErrSingularTransform means the linear transform cannot be inverted.
	ErrSingularTransform = errors.New("singular WCS linear transform")
)

// Solution is a solved world coordinate mapping for one image.
type Solution struct {
	Projection Projection
	CRPix      [2]float64    // Reference pixel, FITS 1-based
	CRVal      [2]float64    // Reference celestial coordinate (RA, Dec) in degrees
	CD         [2][2]float64 // Linear transform in degrees per pixel
	Width      int
	Height     int
	Axes       int // NAXIS; values above 2 carry a degenerate third axis
	RADesys    string
	Equinox    float64
	LonPole    float64 // Native longitude of the celestial pole, when HasLonPole
	HasLonPole bool    // false selects the projection default
}

// Reference returns the reference celestial coordinate.
func (s Solution) Reference() astro.SkyCoord {
	return astro.SkyCoord{RAdeg: s.CRVal[0], DecDeg: s.CRVal[1]}
}

// HasDegenerateAxis reports whether the solution describes more than the two
// celestial axes (for example an RGB cube).
func (s Solution) HasDegenerateAxis() bool {
	return s.Axes > 2
}

// DropDegenerateAxis returns a copy restricted to the two celestial axes.
// Solutions that are already two-dimensional are returned unchanged.
func (s Solution) DropDegenerateAxis() Solution {
	if !s.HasDegenerateAxis() {
		return s
	}
	s.Axes = 2
	return s
}

// FromHeader builds a Solution from FITS WCS keywords.
//
// The linear transform is read from CDi_j when present, otherwise from
// PCi_j scaled by CDELTi, otherwise from CDELTi with an optional CROTA2.
func FromHeader(h Header) (Solution, error) {
	if !h.Has("CRPIX1") {
		return Solution{}, ErrMissingAstrometrySolution
	}

	sol := Solution{
		Projection: ParseProjection(h.Value("CTYPE1")),
		RADesys:    h.Value("RADESYS"),
		Axes:       2,
	}

	var ok bool
	if sol.CRPix[0], ok = h.Float("CRPIX1"); !ok {
		return Solution{}, fmt.Errorf("parse CRPIX1: %w", ErrMissingAstrometrySolution)
	}
	if sol.CRPix[1], ok = h.Float("CRPIX2"); !ok {
		return Solution{}, fmt.Errorf("parse CRPIX2: %w", ErrMissingAstrometrySolution)
	}
	sol.CRVal[0], _ = h.Float("CRVAL1")
	sol.CRVal[1], _ = h.Float("CRVAL2")

	cd, err := linearTransform(h)
	if err != nil {
		return Solution{}, err
	}
	sol.CD = cd

	if n, ok := h.Int("NAXIS"); ok {
		sol.Axes = n
	}

	// IMAGEW/IMAGEH are written by solvers that do not emit NAXISn.
	if w, ok := h.Int("IMAGEW"); ok {
		sol.Width = w
	} else {
		sol.Width, _ = h.Int("NAXIS1")
	}
	if hh, ok := h.Int("IMAGEH"); ok {
		sol.Height = hh
	} else {
		sol.Height, _ = h.Int("NAXIS2")
	}

	if eq, ok := h.Float("EQUINOX"); ok {
		sol.Equinox = eq
	} else if eq, ok := h.Float("EPOCH"); ok {
		sol.Equinox = eq
	}
	if lp, ok := h.Float("LONPOLE"); ok && !math.IsNaN(lp) {
		sol.LonPole, sol.HasLonPole = lp, true
	}

	return sol, nil
}

func linearTransform(h Header) ([2][2]float64, error) {
	var cd [2][2]float64

	if h.Has("CD1_1") || h.Has("CD2_2") || h.Has("CD1_2") || h.Has("CD2_1") {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				cd[i][j], _ = h.Float(fmt.Sprintf("CD%d_%d", i+1, j+1))
			}
		}
		return cd, nil
	}

	cdelt1, ok1 := h.Float("CDELT1")
	cdelt2, ok2 := h.Float("CDELT2")
	if !ok1 || !ok2 {
		return cd, fmt.Errorf("no CD, PC or CDELT keywords: %w", ErrMissingAstrometrySolution)
	}

	if h.Has("PC1_1") || h.Has("PC2_2") || h.Has("PC1_2") || h.Has("PC2_1") {
		pc := [2][2]float64{{1, 0}, {0, 1}}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				if v, ok := h.Float(fmt.Sprintf("PC%d_%d", i+1, j+1)); ok {
					pc[i][j] = v
				}
			}
		}
		cd[0][0] = cdelt1 * pc[0][0]
		cd[0][1] = cdelt1 * pc[0][1]
		cd[1][0] = cdelt2 * pc[1][0]
		cd[1][1] = cdelt2 * pc[1][1]
		return cd, nil
	}

	rot := 0.0
	if r, ok := h.Float("CROTA2"); ok {
		rot = astro.DegToRad(r)
	}
	cd[0][0] = cdelt1 * math.Cos(rot)
	cd[0][1] = -cdelt2 * math.Sin(rot)
	cd[1][0] = cdelt1 * math.Sin(rot)
	cd[1][1] = cdelt2 * math.Cos(rot)
	return cd, nil
}

// ToHeader renders the solution back into FITS WCS keywords.
func (s Solution) ToHeader() Header {
	h := Header{}
	h.Set("CTYPE1", "RA---"+string(s.Projection))
	h.Set("CTYPE2", "DEC--"+string(s.Projection))
	h.SetFloat("CRPIX1", s.CRPix[0])
	h.SetFloat("CRPIX2", s.CRPix[1])
	h.SetFloat("CRVAL1", s.CRVal[0])
	h.SetFloat("CRVAL2", s.CRVal[1])
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			h.SetFloat(fmt.Sprintf("CD%d_%d", i+1, j+1), s.CD[i][j])
		}
	}
	h.SetInt("NAXIS", s.Axes)
	h.SetInt("NAXIS1", s.Width)
	h.SetInt("NAXIS2", s.Height)
	if s.RADesys != "" {
		h.Set("RADESYS", strings.TrimSpace(s.RADesys))
	}
	if s.Equinox != 0 {
		h.SetFloat("EQUINOX", s.Equinox)
	}
	if s.HasLonPole {
		h.SetFloat("LONPOLE", s.LonPole)
	}
	return h
}
