package wcs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-skyfield/internal/astro"
)

// Pixel is a 0-based image position. The centre of the first pixel is (0, 0).
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Pixel) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Adapter converts between pixel and celestial coordinates for one solution.
// An Adapter is immutable and safe for concurrent use.
type Adapter struct {
	sol Solution
	cd  *mat.Dense
	inv *mat.Dense

	// native pole in celestial coordinates, and its native longitude
	alphaP, deltaP, phiP float64

	scale float64
}

// NewAdapter prepares a solution for coordinate conversion. Any degenerate
// third axis is dropped first.
func NewAdapter(sol Solution) (*Adapter, error) {
	sol = sol.DropDegenerateAxis()
	if !sol.Projection.Valid() {
		sol.Projection = TAN
	}

	cd := mat.NewDense(2, 2, []float64{
		sol.CD[0][0], sol.CD[0][1],
		sol.CD[1][0], sol.CD[1][1],
	})
	if det := mat.Det(cd); det == 0 || math.IsNaN(det) {
		return nil, ErrSingularTransform
	}
	var inv mat.Dense
	if err := inv.Inverse(cd); err != nil {
		return nil, fmt.Errorf("invert CD matrix: %w", ErrSingularTransform)
	}

	a := &Adapter{sol: sol, cd: cd, inv: &inv}
	a.nativePole()

	col1 := math.Hypot(sol.CD[0][0], sol.CD[1][0])
	col2 := math.Hypot(sol.CD[0][1], sol.CD[1][1])
	a.scale = (col1 + col2) / 2 * 3600

	return a, nil
}

// Solution returns the solution the adapter was built from.
func (a *Adapter) Solution() Solution {
	return a.sol
}

// PixelScaleArcsecPerPixel returns the mean pixel scale in arcseconds.
func (a *Adapter) PixelScaleArcsecPerPixel() float64 {
	return a.scale
}

// nativePole computes the celestial coordinates of the native pole from
// CRVAL, LONPOLE and a LATPOLE of +90.
func (a *Adapter) nativePole() {
	alpha0, delta0 := a.sol.CRVal[0], a.sol.CRVal[1]
	theta0 := a.sol.Projection.theta0()
	phi0 := 0.0

	phiP := a.sol.LonPole
	if !a.sol.HasLonPole {
		if delta0 >= theta0 {
			phiP = 0
		} else {
			phiP = 180
		}
	}
	a.phiP = phiP

	if theta0 == 90 {
		a.alphaP, a.deltaP = alpha0, delta0
		return
	}

	const latPole = 90.0
	dphi := phiP - phi0
	base := atan2d(sind(theta0), cosd(theta0)*cosd(dphi))
	denom := math.Sqrt(1 - math.Pow(cosd(theta0)*sind(dphi), 2))
	arg := sind(delta0) / denom
	arg = math.Max(-1, math.Min(1, arg))
	span := acosd(arg)

	deltaP := math.NaN()
	for _, cand := range []float64{base + span, base - span} {
		if cand < -90-1e-12 || cand > 90+1e-12 {
			continue
		}
		if math.IsNaN(deltaP) || math.Abs(cand-latPole) < math.Abs(deltaP-latPole) {
			deltaP = cand
		}
	}
	if math.IsNaN(deltaP) {
		deltaP = delta0
	}
	deltaP = math.Max(-90, math.Min(90, deltaP))

	var alphaP float64
	switch {
	case deltaP == 90:
		alphaP = alpha0 + phiP - phi0 - 180
	case deltaP == -90:
		alphaP = alpha0 - phiP + phi0
	case math.Abs(cosd(delta0)) < 1e-12:
		alphaP = alpha0
	default:
		alphaP = alpha0 - atan2d(
			sind(dphi)*cosd(theta0)/cosd(delta0),
			(sind(theta0)-sind(deltaP)*sind(delta0))/(cosd(deltaP)*cosd(delta0)),
		)
	}

	a.alphaP, a.deltaP = alphaP, deltaP
}

func (a *Adapter) nativeToCelestial(phi, theta float64) (ra, dec float64) {
	dphi := phi - a.phiP
	ra = a.alphaP + atan2d(
		-cosd(theta)*sind(dphi),
		sind(theta)*cosd(a.deltaP)-cosd(theta)*sind(a.deltaP)*cosd(dphi),
	)
	s := sind(theta)*sind(a.deltaP) + cosd(theta)*cosd(a.deltaP)*cosd(dphi)
	dec = asind(math.Max(-1, math.Min(1, s)))
	return astro.NormalizeAngle360(ra), dec
}

func (a *Adapter) celestialToNative(ra, dec float64) (phi, theta float64) {
	dra := ra - a.alphaP
	phi = a.phiP + atan2d(
		-cosd(dec)*sind(dra),
		sind(dec)*cosd(a.deltaP)-cosd(dec)*sind(a.deltaP)*cosd(dra),
	)
	s := sind(dec)*sind(a.deltaP) + cosd(dec)*cosd(a.deltaP)*cosd(dra)
	theta = asind(math.Max(-1, math.Min(1, s)))
	return wrap180(phi), theta
}

// PixelToWorld converts pixel positions to celestial coordinates. Positions
// that fall outside the projection come back as NaN.
func (a *Adapter) PixelToWorld(pix []Pixel) []astro.SkyCoord {
	out := make([]astro.SkyCoord, len(pix))
	if len(pix) == 0 {
		return out
	}

	off := mat.NewDense(2, len(pix), nil)
	for i, p := range pix {
		off.Set(0, i, p.X-(a.sol.CRPix[0]-1))
		off.Set(1, i, p.Y-(a.sol.CRPix[1]-1))
	}
	var xy mat.Dense
	xy.Mul(a.cd, off)

	for i, p := range pix {
		if !p.IsFinite() {
			out[i] = astro.SkyCoord{RAdeg: math.NaN(), DecDeg: math.NaN()}
			continue
		}
		phi, theta, ok := a.sol.Projection.deproject(xy.At(0, i), xy.At(1, i))
		if !ok {
			out[i] = astro.SkyCoord{RAdeg: math.NaN(), DecDeg: math.NaN()}
			continue
		}
		ra, dec := a.nativeToCelestial(phi, theta)
		out[i] = astro.SkyCoord{RAdeg: ra, DecDeg: dec}
	}
	return out
}

// WorldToPixel converts celestial coordinates to pixel positions. Points that
// cannot be projected (for example behind a gnomonic tangent plane) come back
// as NaN.
func (a *Adapter) WorldToPixel(coords []astro.SkyCoord) []Pixel {
	out := make([]Pixel, len(coords))
	if len(coords) == 0 {
		return out
	}

	valid := make([]bool, len(coords))
	xy := mat.NewDense(2, len(coords), nil)
	for i, c := range coords {
		if !c.IsFinite() {
			continue
		}
		phi, theta := a.celestialToNative(c.RAdeg, c.DecDeg)
		x, y, ok := a.sol.Projection.project(phi, theta)
		if !ok {
			continue
		}
		xy.Set(0, i, x)
		xy.Set(1, i, y)
		valid[i] = true
	}

	var off mat.Dense
	off.Mul(a.inv, xy)

	for i := range coords {
		if !valid[i] {
			out[i] = Pixel{X: math.NaN(), Y: math.NaN()}
			continue
		}
		out[i] = Pixel{
			X: off.At(0, i) + a.sol.CRPix[0] - 1,
			Y: off.At(1, i) + a.sol.CRPix[1] - 1,
		}
	}
	return out
}

// PixelToSky converts a single pixel position.
func (a *Adapter) PixelToSky(p Pixel) astro.SkyCoord {
	return a.PixelToWorld([]Pixel{p})[0]
}

// SkyToPixel converts a single celestial coordinate.
func (a *Adapter) SkyToPixel(c astro.SkyCoord) Pixel {
	return a.WorldToPixel([]astro.SkyCoord{c})[0]
}
