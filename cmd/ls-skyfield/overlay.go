package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/config"
	"github.com/litescript/ls-skyfield/internal/skymap"
	"github.com/litescript/ls-skyfield/internal/ui"
)

// productFlags are the pipeline settings shared by overlay and browse.
type productFlags struct {
	catalog     string
	catalogFile string
	solve       bool
	minRadius   float64
	raLines     int
	decLines    int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Catalog provider: simbad or file (default from config)")
	cmd.Flags().StringVar(&f.catalogFile, "catalog-file", "", "JSON or YAML catalog file; implies --catalog file")
	cmd.Flags().BoolVar(&f.solve, "solve", false, "Plate-solve with astrometry.net when the image has no solution")
	cmd.Flags().Float64Var(&f.minRadius, "min-radius", -1, "Smallest overlay semi-axis in pixels (default from config)")
	cmd.Flags().IntVar(&f.raLines, "ra-lines", 0, "Number of constant-RA grid lines (default from config)")
	cmd.Flags().IntVar(&f.decLines, "dec-lines", 0, "Number of constant-Dec grid lines (default from config)")
}

// apply folds command-line overrides into the loaded configuration.
func (f *productFlags) apply(cfg *config.Config) error {
	if f.catalogFile != "" {
		cfg.Catalog.File = f.catalogFile
		cfg.Catalog.Provider = config.CatalogFile
	}
	if f.catalog != "" {
		cfg.Catalog.Provider = f.catalog
	}
	if f.minRadius >= 0 {
		cfg.Overlay.MinRadius = f.minRadius
	}
	if f.raLines > 0 {
		cfg.Grid.RACount = f.raLines
	}
	if f.decLines > 0 {
		cfg.Grid.DecCount = f.decLines
	}
	return cfg.Validate()
}

// buildProduct runs the whole pipeline for one image file.
func (a *app) buildProduct(ctx context.Context, path string, f *productFlags) (*skymap.Product, error) {
	if err := f.apply(&a.cfg); err != nil {
		return nil, err
	}

	h, err := a.loadHeader(ctx, path, f.solve)
	if err != nil {
		return nil, err
	}
	provider, err := a.provider()
	if err != nil {
		return nil, err
	}
	d, err := a.descriptors()
	if err != nil {
		return nil, err
	}

	opts := skymap.DefaultOptions()
	opts.Overlay.MinRadius = a.cfg.Overlay.MinRadius
	opts.Grid.RACount = a.cfg.Grid.RACount
	opts.Grid.DecCount = a.cfg.Grid.DecCount

	a.log.Debug("building %s with catalog %s", filepath.Base(path), provider.Name())
	return skymap.NewBuilder(provider, d, a.log, opts).BuildFromHeader(ctx, h)
}

func newOverlayCmd(a *app) *cobra.Command {
	var (
		pf          productFlags
		out         string
		parquetPath string
		saveCatalog string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "overlay FILE",
		Short: "Compute catalog overlays, grid and diagrams for a solved image",
		Long: `Resolves the image's field of view, queries the catalog once for the
whole field and converts every object to a pixel ellipse. The result also
carries an RA/Dec grid and the HR and proper-motion diagrams of the stars
found.

A summary is printed to the terminal. Use --out to write the full product
as JSON, --parquet to export the diagram points, and --save-catalog to keep
the raw catalog result for later runs with --catalog-file.`,
		Example: `  ls-skyfield overlay m31.xisf
  ls-skyfield overlay m31.fits --out m31.json --parquet m31-diagrams.parquet
  ls-skyfield overlay m31.xisf --save-catalog m31-objects.yaml
  ls-skyfield overlay m31.xisf --catalog-file m31-objects.yaml --min-radius 10
  ls-skyfield overlay m31.jpg --solve --out -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.buildProduct(cmd.Context(), args[0], &pf)
			if err != nil {
				return err
			}

			if out != "" {
				if err := writeOutput(cmd, out, p.WriteJSON); err != nil {
					return err
				}
			}
			if parquetPath != "" {
				if err := writeOutput(cmd, parquetPath, p.WriteParquet); err != nil {
					return err
				}
			}
			if saveCatalog != "" {
				if err := writeOutput(cmd, saveCatalog, func(w io.Writer) error {
					return catalog.WriteRecords(w, p.Objects, catalog.FormatForPath(saveCatalog))
				}); err != nil {
					return err
				}
			}

			// stdout already carries an export
			if out == "-" || parquetPath == "-" || saveCatalog == "-" {
				return nil
			}
			w := cmd.OutOrStdout()
			if isTerminal(w) {
				fmt.Fprint(w, ui.RenderSummary(p, limit))
			} else {
				ui.WriteSummary(w, p, limit)
			}
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Write the product as JSON (- for stdout)")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write the diagram points as Parquet")
	cmd.Flags().StringVar(&saveCatalog, "save-catalog", "", "Write the raw catalog result (.json or .yaml)")
	cmd.Flags().IntVar(&limit, "limit", 25, "Objects listed in the summary (0 for all)")

	return cmd
}
