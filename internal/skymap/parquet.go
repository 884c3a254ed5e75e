package skymap

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/parquet-go/parquet-go"

	"github.com/litescript/ls-skyfield/internal/photometry"
)

// Plot names used in DiagramRow.Plot.
const (
	PlotHR = "hr"
	PlotPM = "pm"
)

// DiagramRow is the flat Parquet form of a diagram point. Missing pixel
// positions and distances are NaN.
type DiagramRow struct {
	Plot          string  `parquet:"plot"`
	Name          string  `parquet:"name"`
	X             float64 `parquet:"x"`
	Y             float64 `parquet:"y"`
	Size          float64 `parquet:"size"`
	Color         string  `parquet:"color"`
	SpectralClass string  `parquet:"spectral_class"`
	ObjectType    string  `parquet:"object_type"`
	Code          string  `parquet:"code"`
	PixelX        float64 `parquet:"pixel_x"`
	PixelY        float64 `parquet:"pixel_y"`
	DistanceLy    float64 `parquet:"distance_ly"`
}

func diagramRow(plot string, pt photometry.Point) DiagramRow {
	row := DiagramRow{
		Plot:       plot,
		Name:       pt.ID,
		X:          pt.X,
		Y:          pt.Y,
		Size:       pt.Size,
		Color:      pt.Color,
		ObjectType: pt.ObjectType,
		Code:       pt.Code,
		PixelX:     math.NaN(),
		PixelY:     math.NaN(),
		DistanceLy: math.NaN(),
	}
	if pt.SpectralClass != nil {
		row.SpectralClass = *pt.SpectralClass
	}
	if pt.Pixel != nil {
		row.PixelX, row.PixelY = pt.Pixel.X, pt.Pixel.Y
	}
	if pt.DistanceLy != nil {
		row.DistanceLy = *pt.DistanceLy
	}
	return row
}

// DiagramRows flattens both diagrams, HR first.
func (p *Product) DiagramRows() []DiagramRow {
	rows := make([]DiagramRow, 0, len(p.Plots.HR)+len(p.Plots.PM))
	for _, pt := range p.Plots.HR {
		rows = append(rows, diagramRow(PlotHR, pt))
	}
	for _, pt := range p.Plots.PM {
		rows = append(rows, diagramRow(PlotPM, pt))
	}
	return rows
}

// WriteParquet writes the diagram rows as a Parquet file.
func (p *Product) WriteParquet(w io.Writer) error {
	pw := parquet.NewGenericWriter[DiagramRow](w)
	if _, err := pw.Write(p.DiagramRows()); err != nil {
		return fmt.Errorf("writing parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// ReadDiagramRows reads a file written by WriteParquet.
func ReadDiagramRows(r io.ReaderAt, size int64) ([]DiagramRow, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening parquet: %w", err)
	}

	reader := parquet.NewGenericReader[DiagramRow](pf)
	defer reader.Close()

	rows := make([]DiagramRow, 0, pf.NumRows())
	batch := make([]DiagramRow, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}
