package skymap

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/grid"
	"github.com/litescript/ls-skyfield/internal/overlay"
	"github.com/litescript/ls-skyfield/internal/photometry"
)

// Plots holds the classification diagrams.
type Plots struct {
	HR []photometry.Point `json:"hr"`
	PM []photometry.Point `json:"pm"`
}

// Product is everything needed to draw overlays on one image.
type Product struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Projection string           `json:"projection"`
	PixelScale float64          `json:"pixel_scale"` // arcsec/px
	Field      fov.Field        `json:"field"`
	Catalog    string           `json:"catalog"`
	Queried    int              `json:"queried"`
	Overlays   []overlay.Record `json:"overlays"`
	Dropped    overlay.Dropped  `json:"dropped"`
	Grid       grid.Grid        `json:"grid"`
	Plots      Plots            `json:"plots"`
	Warnings   []string         `json:"warnings,omitempty"`

	// Objects is the raw catalog result, kept for export.
	Objects []catalog.Object `json:"-"`
}

// WriteJSON encodes the product as indented JSON.
func (p *Product) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding product: %w", err)
	}
	return nil
}

// ReadProduct decodes a product written by WriteJSON.
func ReadProduct(r io.Reader) (*Product, error) {
	var p Product
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	return &p, nil
}
