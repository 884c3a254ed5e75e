// Command ls-skyfield plate-solves astronomical images and computes
// catalog overlays, coordinate grids and classification diagrams for them.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/litescript/ls-skyfield/internal/version"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
