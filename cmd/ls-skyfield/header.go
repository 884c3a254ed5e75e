package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/fits"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

func newHeaderCmd(a *app) *cobra.Command {
	var (
		out   string
		cards bool
	)

	cmd := &cobra.Command{
		Use:   "header FILE",
		Short: "Show the WCS solution embedded in a FITS or XISF file",
		Long: `Reads the astrometric solution stored in a FITS header or in the XISF
PCL:AstrometricSolution properties and prints the reference point, pixel
scale and linear transform. With --out the solution is written as a
FITS header file that other tools can read.`,
		Example: `  ls-skyfield header m31.xisf
  ls-skyfield header m31.xisf --cards
  ls-skyfield header m31.xisf --out m31.wcs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.loadHeader(cmd.Context(), args[0], false)
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

			w := cmd.OutOrStdout()
			writeSolution(w, sol, adapter)
			if cards {
				fmt.Fprintln(w)
				writeCards(w, h)
			}
			if out != "" {
				return writeOutput(cmd, out, func(w io.Writer) error {
					return fits.WriteHeader(w, sol.ToHeader())
				})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the solution as a FITS header file (- for stdout)")
	cmd.Flags().BoolVar(&cards, "cards", false, "Also list every header keyword")

	return cmd
}

func writeSolution(w io.Writer, sol wcs.Solution, a *wcs.Adapter) {
	ref := sol.Reference()
	fmt.Fprintf(w, "Projection  %s\n", sol.Projection)
	fmt.Fprintf(w, "Reference   %s %s  (%.6f, %.6f)\n",
		astro.FormatRA(ref.RAdeg), astro.FormatDec(ref.DecDeg), ref.RAdeg, ref.DecDeg)
	fmt.Fprintf(w, "Ref pixel   %.3f, %.3f\n", sol.CRPix[0], sol.CRPix[1])
	fmt.Fprintf(w, "CD          [% .6e % .6e]\n", sol.CD[0][0], sol.CD[0][1])
	fmt.Fprintf(w, "            [% .6e % .6e]\n", sol.CD[1][0], sol.CD[1][1])
	fmt.Fprintf(w, "Image       %d x %d px\n", sol.Width, sol.Height)
	fmt.Fprintf(w, "Scale       %.3f\"/px\n", a.PixelScaleArcsecPerPixel())
	if sol.RADesys != "" {
		fmt.Fprintf(w, "Frame       %s %g\n", sol.RADesys, sol.Equinox)
	}
}

func writeCards(w io.Writer, h wcs.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-8s = %s\n", k, h[k])
	}
}
