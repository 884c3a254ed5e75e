package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-skyfield/internal/skymap"
	"github.com/litescript/ls-skyfield/internal/ui"
)

func newBrowseCmd(a *app) *cobra.Command {
	var pf productFlags

	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Explore overlays and diagrams in the terminal",
		Long: `Opens an interactive browser for an image or for a product saved with
"overlay --out". Tabs list the overlay objects, draw the field with its
grid, and plot the HR and proper-motion diagrams.`,
		Example: `  ls-skyfield browse m31.xisf
  ls-skyfield browse m31.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("browse needs an interactive terminal; use overlay for scripted output")
			}

			path := args[0]
			var p *skymap.Product
			if strings.EqualFold(filepath.Ext(path), ".json") {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if p, err = skymap.ReadProduct(f); err != nil {
					return err
				}
			} else {
				var err error
				if p, err = a.buildProduct(cmd.Context(), path, &pf); err != nil {
					return err
				}
			}

			return ui.Run(p, filepath.Base(path))
		},
	}

	pf.register(cmd)

	return cmd
}
