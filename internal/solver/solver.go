// Package solver obtains WCS headers for images, either from an external
// plate-solving service or from headers already embedded in the file.
package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/litescript/ls-skyfield/internal/fits"
	"github.com/litescript/ls-skyfield/internal/wcs"
	"github.com/litescript/ls-skyfield/internal/xisf"
)

// ErrSolveFailed means the service finished without a solution.
var ErrSolveFailed = errors.New("plate solve failed")

// Solver returns the WCS header for an image. Callers convert the result
// with wcs.FromHeader, which reports an unsolved header as
// wcs.ErrMissingAstrometrySolution.
type Solver interface {
	Name() string
	Solve(ctx context.Context, image []byte, filename string) (wcs.Header, error)
}

// FileSolver reads the header embedded in a FITS or XISF file.
type FileSolver struct{}

// Name implements Solver.
func (FileSolver) Name() string {
	return "file"
}

// Solve implements Solver. The format is chosen by file extension.
func (FileSolver) Solve(ctx context.Context, image []byte, filename string) (wcs.Header, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xisf":
		r, err := xisf.NewReader(bytes.NewReader(image))
		if err != nil {
			return nil, err
		}
		return r.Header(0)
	case ".fits", ".fit", ".fts", ".wcs", ".new":
		return fits.ReadHeader(bytes.NewReader(image))
	}
	return nil, fmt.Errorf("%s: no embedded header format for extension", filename)
}

// IsEmbedded reports whether a file name carries its own header.
func IsEmbedded(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xisf", ".fits", ".fit", ".fts", ".wcs", ".new":
		return true
	}
	return false
}
