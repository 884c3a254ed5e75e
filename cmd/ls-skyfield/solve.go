package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-skyfield/internal/fits"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

func newSolveCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "solve IMAGE",
		Short: "Plate-solve an image with astrometry.net",
		Long: `Uploads the image to the astrometry.net nova API, waits for the job to
finish and writes the resulting WCS header next to the image (IMAGE.wcs)
or to --out. FITS and XISF files that already carry a solution are not
uploaded.

The API key is read from ASTROMETRY_API_KEY or the solver.api_key setting.`,
		Example: `  ls-skyfield solve m31.jpg
  ls-skyfield solve m31.png --out m31.wcs
  ASTROMETRY_URL=http://localhost:8000 ls-skyfield solve m31.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			h, err := a.loadHeader(cmd.Context(), path, true)
			if err != nil {
				return err
			}
			sol, err := wcs.FromHeader(h)
			if err != nil {
				return err
			}
			adapter, err := wcs.NewAdapter(sol)
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".wcs"
			}
			if err := writeOutput(cmd, out, func(w io.Writer) error {
				return fits.WriteHeader(w, h)
			}); err != nil {
				return err
			}

			if out != "-" {
				writeSolution(cmd.OutOrStdout(), sol, adapter)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote       %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output FITS header file (default IMAGE.wcs, - for stdout)")

	return cmd
}
