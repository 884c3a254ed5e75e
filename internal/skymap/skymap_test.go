package skymap

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/logging"
	"github.com/litescript/ls-skyfield/internal/photometry"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

func testSolution() wcs.Solution {
	return wcs.Solution{
		Projection: wcs.TAN,
		CRPix:      [2]float64{512, 512},
		CRVal:      [2]float64{10, 20},
		CD:         [2][2]float64{{0.001, 0}, {0, 0.001}},
		Width:      1024,
		Height:     1024,
		Axes:       2,
	}
}

func testObjects() []catalog.Object {
	gal := catalog.NewObject("NGC 100", 10.1, 20.1)
	gal.OType = "G"
	gal.MajAxis, gal.MinAxis, gal.PosAngle = 8, 4, 45

	star := catalog.NewObject("HD 1", 9.9, 19.9)
	star.OType = "*"
	star.B, star.V = 1.2, 6.5
	star.Parallax = 20
	star.PMRA, star.PMDec = 12.5, -3
	star.SpType = "K0III"

	far := catalog.NewObject("far away", 50, -10)
	far.OType = "G"
	far.MajAxis, far.MinAxis = 30, 30

	return []catalog.Object{gal, star, far}
}

func newTestBuilder(objs []catalog.Object, log *logging.Logger) *Builder {
	d, _ := catalog.DefaultDescriptors()
	return NewBuilder(catalog.NewStaticProvider("test", objs), d, log, DefaultOptions())
}

func TestBuild(t *testing.T) {
	p, err := newTestBuilder(testObjects(), nil).Build(context.Background(), testSolution())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if p.Width != 1024 || p.Height != 1024 || p.Projection != "TAN" {
		t.Errorf("product header = %dx%d %s", p.Width, p.Height, p.Projection)
	}
	if math.Abs(p.PixelScale-3.6) > 1e-9 {
		t.Errorf("PixelScale = %v", p.PixelScale)
	}
	if math.Abs(p.Field.Radius-0.724) > 0.005 {
		t.Errorf("Field.Radius = %v", p.Field.Radius)
	}
	// the cone query drops the far object before the overlay stage
	if p.Queried != 2 || p.Catalog != "test" {
		t.Errorf("Queried = %d from %q", p.Queried, p.Catalog)
	}
	if len(p.Overlays) != 1 || p.Overlays[0].ID != "NGC 100" {
		t.Fatalf("Overlays = %+v", p.Overlays)
	}
	if p.Dropped.TooSmall != 1 {
		t.Errorf("Dropped = %+v", p.Dropped)
	}
	if len(p.Grid.RALines) != 6 || len(p.Grid.DecLines) != 6 {
		t.Errorf("grid = %d x %d lines", len(p.Grid.RALines), len(p.Grid.DecLines))
	}
	if len(p.Plots.HR) != 1 || len(p.Plots.PM) != 1 {
		t.Fatalf("plots = %d HR, %d PM", len(p.Plots.HR), len(p.Plots.PM))
	}
	hr := p.Plots.HR[0]
	if hr.Pixel == nil || hr.DistanceLy == nil {
		t.Fatalf("HR point lacks pixel or distance: %+v", hr)
	}
	if math.Abs(*hr.DistanceLy-50*3.26156) > 1e-6 {
		t.Errorf("distance = %v", *hr.DistanceLy)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("Warnings = %v", p.Warnings)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	var logs bytes.Buffer
	log := logging.New(logging.LevelDebug)
	log.SetOutput(&logs)

	p, err := newTestBuilder(nil, log).Build(context.Background(), testSolution())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(p.Overlays) != 0 || len(p.Plots.HR) != 0 {
		t.Errorf("unexpected content: %+v", p)
	}
	if len(p.Grid.RALines) != 6 {
		t.Error("grid not generated for an empty catalog")
	}
	if len(p.Warnings) != 1 || p.Warnings[0] != ErrEmptyCatalogResult.Error() {
		t.Errorf("Warnings = %v", p.Warnings)
	}
	if !strings.Contains(logs.String(), "[WARN] skymap:") {
		t.Errorf("no warning logged:\n%s", logs.String())
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Name() string { return "failing" }

func (f failingProvider) Query(context.Context, astro.SkyCoord, float64) ([]catalog.Object, error) {
	return nil, f.err
}

func TestBuildErrors(t *testing.T) {
	boom := errors.New("boom")

	noSize := testSolution()
	noSize.Width = 0

	singular := testSolution()
	singular.CD = [2][2]float64{{0.001, 0.001}, {0.001, 0.001}}

	tests := []struct {
		name     string
		provider catalog.Provider
		sol      wcs.Solution
		want     error
	}{
		{"provider error", failingProvider{boom}, testSolution(), boom},
		{"missing size", catalog.NewStaticProvider("x", nil), noSize, ErrMissingImageSize},
		{"singular", catalog.NewStaticProvider("x", nil), singular, wcs.ErrSingularTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.provider, nil, nil, DefaultOptions())
			_, err := b.Build(context.Background(), tt.sol)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuildFromHeader(t *testing.T) {
	b := newTestBuilder(testObjects(), nil)

	if _, err := b.BuildFromHeader(context.Background(), wcs.Header{"NAXIS1": "10"}); !errors.Is(err, wcs.ErrMissingAstrometrySolution) {
		t.Errorf("err = %v, want ErrMissingAstrometrySolution", err)
	}

	p, err := b.BuildFromHeader(context.Background(), testSolution().ToHeader())
	if err != nil {
		t.Fatalf("BuildFromHeader: %v", err)
	}
	if len(p.Overlays) != 1 {
		t.Errorf("Overlays = %+v", p.Overlays)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestBuilder(testObjects(), nil).Build(ctx, testSolution()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestProductJSON(t *testing.T) {
	p, err := newTestBuilder(testObjects(), nil).Build(context.Background(), testSolution())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	for _, key := range []string{`"overlays"`, `"angle"`, `"otype"`, `"ra_lines"`, `"hr"`, `"pm"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("JSON lacks %s", key)
		}
	}

	got, err := ReadProduct(&buf)
	if err != nil {
		t.Fatalf("ReadProduct: %v", err)
	}
	if got.Width != p.Width || len(got.Overlays) != len(p.Overlays) || got.Overlays[0] != p.Overlays[0] {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Plots.HR) != 1 || *got.Plots.HR[0].SpectralClass != "K0III" {
		t.Errorf("HR after round trip = %+v", got.Plots.HR)
	}
	if got.Objects != nil {
		t.Error("raw objects should not be serialized")
	}
}

func TestProductParquet(t *testing.T) {
	p, err := newTestBuilder(testObjects(), nil).Build(context.Background(), testSolution())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.WriteParquet(&buf); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}

	rows, err := ReadDiagramRows(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadDiagramRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Plot != PlotHR || rows[1].Plot != PlotPM {
		t.Errorf("plots = %s, %s", rows[0].Plot, rows[1].Plot)
	}
	hr := rows[0]
	if hr.Name != "HD 1" || hr.SpectralClass != "K0III" || hr.ObjectType != "Star" {
		t.Errorf("HR row = %+v", hr)
	}
	if math.Abs(hr.X-(1.2-6.5)) > 1e-12 || math.IsNaN(hr.PixelX) {
		t.Errorf("HR row values = %+v", hr)
	}
	if pm := rows[1]; pm.X != 12.5 || pm.Y != -3 {
		t.Errorf("PM row = %+v", pm)
	}
}

func TestDiagramRowMissingValues(t *testing.T) {
	p := &Product{}
	p.Plots.PM = append(p.Plots.PM, photometry.Point{ID: "lonely"})
	rows := p.DiagramRows()
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	r := rows[0]
	if !math.IsNaN(r.PixelX) || !math.IsNaN(r.PixelY) || !math.IsNaN(r.DistanceLy) || r.SpectralClass != "" {
		t.Errorf("row = %+v", r)
	}
}
