// Package skymap runs the full overlay pipeline for one solved image: field
// of view, catalog query, overlay ellipses, coordinate grid and the
// classification diagrams.
package skymap

import (
	"context"
	"errors"
	"fmt"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/grid"
	"github.com/litescript/ls-skyfield/internal/logging"
	"github.com/litescript/ls-skyfield/internal/overlay"
	"github.com/litescript/ls-skyfield/internal/photometry"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

var (
	// ErrEmptyCatalogResult is recorded when the catalog returns nothing for
	// the field. The product is still built.
	ErrEmptyCatalogResult = errors.New("catalog returned no objects for the field")

	// ErrMissingImageSize means the solution carries no image dimensions.
	ErrMissingImageSize = errors.New("solution has no image size")

	// ErrFieldNotProjectable means no image corner maps to the sky.
	ErrFieldNotProjectable = errors.New("no image corner projects to the sky")
)

// Options tune the pipeline stages.
type Options struct {
	Overlay overlay.Options
	Grid    grid.Options
}

// DefaultOptions returns the standard stage options.
func DefaultOptions() Options {
	return Options{
		Overlay: overlay.DefaultOptions(),
		Grid:    grid.DefaultOptions(),
	}
}

// Builder assembles products from solutions. It is safe for concurrent use
// as long as the provider is.
type Builder struct {
	provider    catalog.Provider
	descriptors *catalog.Descriptors
	log         *logging.Logger
	opts        Options
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(provider catalog.Provider, d *catalog.Descriptors, log *logging.Logger, opts Options) *Builder {
	if log == nil {
		log = logging.Discard()
	}
	return &Builder{
		provider:    provider,
		descriptors: d,
		log:         log.With("skymap"),
		opts:        opts,
	}
}

// BuildFromHeader converts a FITS WCS header and builds its product.
func (b *Builder) BuildFromHeader(ctx context.Context, h wcs.Header) (*Product, error) {
	sol, err := wcs.FromHeader(h)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, sol)
}

// Build runs every stage for one solution. The catalog is queried once,
// with a cone covering the whole field.
func (b *Builder) Build(ctx context.Context, sol wcs.Solution) (*Product, error) {
	if sol.Width <= 0 || sol.Height <= 0 {
		return nil, ErrMissingImageSize
	}
	a, err := wcs.NewAdapter(sol)
	if err != nil {
		return nil, err
	}

	field := fov.Resolve(sol.Width, sol.Height, a)
	if !field.Valid() {
		return nil, ErrFieldNotProjectable
	}
	b.log.Debug("field %s %s radius %.4f deg, scale %.3f\"/px",
		astro.FormatRA(field.Center.RAdeg), astro.FormatDec(field.Center.DecDeg),
		field.Radius, a.PixelScaleArcsecPerPixel())

	objs, err := b.provider.Query(ctx, field.Center, field.Radius)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", b.provider.Name(), err)
	}

	p := &Product{
		Width:      sol.Width,
		Height:     sol.Height,
		Projection: string(a.Solution().Projection),
		PixelScale: a.PixelScaleArcsecPerPixel(),
		Field:      field,
		Catalog:    b.provider.Name(),
		Queried:    len(objs),
		Objects:    objs,
	}
	if len(objs) == 0 {
		b.log.Warn("%v (%s)", ErrEmptyCatalogResult, b.provider.Name())
		p.Warnings = append(p.Warnings, ErrEmptyCatalogResult.Error())
	}

	res := overlay.Compute(objs, field, a, b.descriptors, b.opts.Overlay)
	p.Overlays = res.Records
	p.Dropped = res.Dropped
	b.log.Info("%d objects from %s, %d overlays (outside %d, duplicate %d, non-finite %d, small %d)",
		len(objs), b.provider.Name(), len(res.Records),
		res.Dropped.OutsideField, res.Dropped.Duplicate, res.Dropped.NonFinite, res.Dropped.TooSmall)

	p.Grid = grid.Generate(a, field, b.opts.Grid)
	p.Plots = Plots{
		HR: photometry.HRDiagram(objs, a, b.descriptors),
		PM: photometry.ProperMotionDiagram(objs, a, b.descriptors),
	}
	b.log.Debug("diagrams: %d HR points, %d PM points", len(p.Plots.HR), len(p.Plots.PM))

	return p, nil
}
