package xisf

import (
	"io"
	"strings"

	"github.com/litescript/ls-skyfield/internal/wcs"
)

// Astrometric solution property identifiers written by PixInsight.
const (
	PropProjectionSystem   = "PCL:AstrometricSolution:ProjectionSystem"
	PropReferenceCelestial = "PCL:AstrometricSolution:ReferenceCelestialCoordinates"
	PropReferenceImage     = "PCL:AstrometricSolution:ReferenceImageCoordinates"
	PropLinearTransform    = "PCL:AstrometricSolution:LinearTransformationMatrix"
	PropReferenceSystem    = "Observation:CelestialReferenceSystem"
	PropEquinox            = "Observation:Equinox"
)

// projectionCodes maps PixInsight projection names to FITS codes.
var projectionCodes = map[string]wcs.Projection{
	"Gnomonic":            wcs.TAN,
	"PlateCarree":         wcs.CAR,
	"Stereographic":       wcs.STG,
	"Orthographic":        wcs.SIN,
	"Aitoff":              wcs.AIT,
	"HammerAitoff":        wcs.AIT,
	"Mercator":            wcs.MER,
	"ZenithalEqualArea":   wcs.ZEA,
	"ZenithalEquidistant": wcs.ARC,
}

// ProjectionCode returns the FITS projection for a PixInsight projection
// system name. Unknown names map to TAN.
func ProjectionCode(name string) wcs.Projection {
	if p, ok := projectionCodes[strings.TrimSpace(name)]; ok {
		return p
	}
	return wcs.TAN
}

// Header builds WCS keywords for an image from its astrometric solution
// properties. When those are absent the embedded FITS keywords are used.
// A header without a reference pixel yields wcs.ErrMissingAstrometrySolution
// from wcs.FromHeader.
func (r *Reader) Header(index int) (wcs.Header, error) {
	if index < 0 || index >= len(r.images) {
		return nil, ErrNoImage
	}
	img := r.images[index]

	var h wcs.Header
	if _, ok := img.Properties[PropReferenceImage]; ok {
		h = solutionHeader(img)
	} else {
		h = keywordHeader(img)
	}

	h.SetInt("NAXIS", 2)
	if img.Width > 0 && img.Height > 0 {
		h.SetInt("NAXIS1", img.Width)
		h.SetInt("NAXIS2", img.Height)
		h.SetInt("IMAGEW", img.Width)
		h.SetInt("IMAGEH", img.Height)
	}
	return h, nil
}

func solutionHeader(img ImageMeta) wcs.Header {
	h := wcs.Header{}
	props := img.Properties

	proj := ProjectionCode(props[PropProjectionSystem].Text)
	h.Set("CTYPE1", "RA---"+string(proj))
	h.Set("CTYPE2", "DEC--"+string(proj))

	if v := props[PropReferenceCelestial].Vector(); len(v) >= 2 {
		h.SetFloat("CRVAL1", v[0])
		h.SetFloat("CRVAL2", v[1])
	}
	// reference image coordinates are stored as written, in the
	// container's top-down pixel frame
	if v := props[PropReferenceImage].Vector(); len(v) >= 2 {
		h.SetFloat("CRPIX1", v[0])
		h.SetFloat("CRPIX2", v[1])
	}
	if m := props[PropLinearTransform].Matrix(); len(m) >= 2 && len(m[0]) >= 2 && len(m[1]) >= 2 {
		h.SetFloat("CD1_1", m[0][0])
		h.SetFloat("CD1_2", m[0][1])
		h.SetFloat("CD2_1", m[1][0])
		h.SetFloat("CD2_2", m[1][1])
	}

	if p, ok := props[PropReferenceSystem]; ok && p.Text != "" {
		h.Set("RADESYS", strings.TrimSpace(p.Text))
	}
	if p, ok := props[PropEquinox]; ok {
		if v, ok := p.Float(); ok {
			h.SetFloat("EQUINOX", v)
		}
	}
	return h
}

func keywordHeader(img ImageMeta) wcs.Header {
	h := wcs.Header{}
	for _, k := range img.Keywords {
		if k.Name == "" || k.Name == "COMMENT" || k.Name == "HISTORY" {
			continue
		}
		v := strings.TrimSpace(k.Value)
		if strings.HasPrefix(v, "'") {
			v = strings.TrimSpace(strings.Trim(v, "'"))
		}
		h.Set(k.Name, v)
	}
	return h
}

// ReadSolution reads the astrometric solution of the first image.
func ReadSolution(rs io.ReadSeeker) (wcs.Solution, error) {
	r, err := NewReader(rs)
	if err != nil {
		return wcs.Solution{}, err
	}
	h, err := r.Header(0)
	if err != nil {
		return wcs.Solution{}, err
	}
	return wcs.FromHeader(h)
}
