package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/config"
	"github.com/litescript/ls-skyfield/internal/logging"
	"github.com/litescript/ls-skyfield/internal/solver"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

// app carries the settings shared by every subcommand. It is filled in by
// the root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "ls-skyfield",
		Short: "Sky overlays for plate-solved astronomical images",
		Long: `ls-skyfield reads the WCS solution of a FITS or XISF image, or obtains one
from astrometry.net, and computes what lies in the field: catalog object
ellipses in pixel coordinates, an RA/Dec grid, and HR and proper-motion
diagrams for the stars it finds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newHeaderCmd(a))
	cmd.AddCommand(newSolveCmd(a))
	cmd.AddCommand(newOverlayCmd(a))
	cmd.AddCommand(newBrowseCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = logging.New(logging.ParseLevel(cfg.LogLevel))
	a.log.SetOutput(stderr)
	return nil
}

func (a *app) descriptors() (*catalog.Descriptors, error) {
	if a.cfg.Descriptors != "" {
		return catalog.LoadDescriptors(a.cfg.Descriptors)
	}
	return catalog.DefaultDescriptors()
}

func (a *app) provider() (catalog.Provider, error) {
	c := a.cfg.Catalog
	switch c.Provider {
	case config.CatalogFile:
		return catalog.LoadFile(c.File)
	default:
		return catalog.NewSIMBADProvider(
			catalog.WithURL(c.SIMBADURL),
			catalog.WithTimeout(c.Timeout),
			catalog.WithMaxRecords(c.MaxRecords),
		), nil
	}
}

func (a *app) astrometryNet() *solver.AstrometryNet {
	s := a.cfg.Solver
	return solver.NewAstrometryNet(s.APIKey,
		solver.WithBaseURL(s.BaseURL),
		solver.WithSolveTimeout(s.SolveTimeout),
		solver.WithPollInterval(s.PollInterval),
		solver.WithLogger(a.log),
	)
}

// loadHeader returns the WCS header for an image. Headers embedded in FITS
// and XISF files are used first; when they hold no solution and remote is
// set, the image is sent to astrometry.net.
func (a *app) loadHeader(ctx context.Context, path string, remote bool) (wcs.Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	if solver.IsEmbedded(name) {
		h, err := solver.FileSolver{}.Solve(ctx, data, name)
		if err != nil {
			return nil, err
		}
		_, err = wcs.FromHeader(h)
		switch {
		case err == nil:
			return h, nil
		case !remote || !errors.Is(err, wcs.ErrMissingAstrometrySolution):
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		a.log.Info("%s has no embedded solution, solving remotely", name)
	} else if !remote {
		return nil, fmt.Errorf("%s: no embedded header; use --solve to plate-solve it", name)
	}

	return a.astrometryNet().Solve(ctx, data, name)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeOutput writes to path, or to stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
