package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-skyfield/internal/catalog"
	"github.com/litescript/ls-skyfield/internal/config"
	"github.com/litescript/ls-skyfield/internal/fits"
	"github.com/litescript/ls-skyfield/internal/skymap"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvCatalog, "")
	t.Setenv(config.EnvAPIKey, "")

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFITS(t *testing.T, dir string, h wcs.Header) string {
	t.Helper()
	path := filepath.Join(dir, "field.fits")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := fits.WriteHeader(f, h); err != nil {
		t.Fatal(err)
	}
	return path
}

func solvedHeader() wcs.Header {
	return wcs.Solution{
		Projection: wcs.TAN,
		CRPix:      [2]float64{512, 512},
		CRVal:      [2]float64{10, 20},
		CD:         [2][2]float64{{0.001, 0}, {0, 0.001}},
		Width:      1024,
		Height:     1024,
		Axes:       2,
	}.ToHeader()
}

func writeCatalog(t *testing.T, dir string) string {
	t.Helper()
	gal := catalog.NewObject("NGC 100", 10.1, 20.1)
	gal.OType = "G"
	gal.MajAxis, gal.MinAxis, gal.PosAngle = 8, 4, 45

	star := catalog.NewObject("HD 1", 9.9, 19.9)
	star.OType = "*"
	star.B, star.V, star.Parallax = 1.2, 6.5, 20
	star.PMRA, star.PMDec = 12.5, -3

	path := filepath.Join(dir, "objects.yaml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := catalog.WriteRecords(f, []catalog.Object{gal, star}, catalog.FormatYAML); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHeaderCommand(t *testing.T) {
	path := writeFITS(t, t.TempDir(), solvedHeader())

	out, err := runCmd(t, "header", path, "--cards")
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	for _, want := range []string{"Projection  TAN", "Scale       3.600\"/px", "Image       1024 x 1024 px", "CRPIX1   = 512"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestHeaderCommandUnsolved(t *testing.T) {
	path := writeFITS(t, t.TempDir(), wcs.Header{"NAXIS1": "100", "NAXIS2": "100"})

	_, err := runCmd(t, "header", path)
	if !errors.Is(err, wcs.ErrMissingAstrometrySolution) {
		t.Errorf("err = %v, want ErrMissingAstrometrySolution", err)
	}
}

func TestHeaderCommandUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "header", path); err == nil || !strings.Contains(err.Error(), "--solve") {
		t.Errorf("err = %v", err)
	}
}

func TestOverlayCommand(t *testing.T) {
	dir := t.TempDir()
	image := writeFITS(t, dir, solvedHeader())
	cat := writeCatalog(t, dir)
	productPath := filepath.Join(dir, "product.json")
	parquetPath := filepath.Join(dir, "diagrams.parquet")
	savedPath := filepath.Join(dir, "saved.json")

	out, err := runCmd(t, "overlay", image,
		"--catalog-file", cat,
		"--out", productPath,
		"--parquet", parquetPath,
		"--save-catalog", savedPath,
	)
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if !strings.Contains(out, "NGC 100") || !strings.Contains(out, "1 HR, 1 PM") {
		t.Errorf("summary:\n%s", out)
	}

	f, err := os.Open(productPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	p, err := skymap.ReadProduct(f)
	if err != nil {
		t.Fatalf("ReadProduct: %v", err)
	}
	if len(p.Overlays) != 1 || p.Catalog != "file:objects.yaml" {
		t.Errorf("product = %+v", p)
	}

	data, err := os.ReadFile(parquetPath)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := skymap.ReadDiagramRows(bytes.NewReader(data), int64(len(data)))
	if err != nil || len(rows) != 2 {
		t.Errorf("parquet rows = %d, err = %v", len(rows), err)
	}

	saved, err := catalog.LoadFile(savedPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	objs, _ := saved.Query(context.Background(), p.Field.Center, 1)
	if len(objs) != 2 {
		t.Errorf("saved catalog has %d objects", len(objs))
	}
}

func TestOverlayCommandJSONToStdout(t *testing.T) {
	dir := t.TempDir()
	image := writeFITS(t, dir, solvedHeader())
	cat := writeCatalog(t, dir)

	out, err := runCmd(t, "overlay", image, "--catalog-file", cat, "--out", "-", "--min-radius", "0")
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	p, err := skymap.ReadProduct(strings.NewReader(out))
	if err != nil {
		t.Fatalf("stdout is not a product: %v\n%s", err, out)
	}
	// with no minimum the sizeless star is kept too
	if len(p.Overlays) != 2 {
		t.Errorf("overlays = %d", len(p.Overlays))
	}
}

func TestOverlayCommandBadProvider(t *testing.T) {
	image := writeFITS(t, t.TempDir(), solvedHeader())
	if _, err := runCmd(t, "overlay", image, "--catalog", "vizier"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestSolveCommandEmbedded(t *testing.T) {
	dir := t.TempDir()
	image := writeFITS(t, dir, solvedHeader())
	wcsPath := filepath.Join(dir, "field.wcs")

	out, err := runCmd(t, "solve", image)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !strings.Contains(out, "Wrote       "+wcsPath) {
		t.Errorf("output:\n%s", out)
	}
	h, err := fits.ReadHeaderFile(wcsPath)
	if err != nil {
		t.Fatalf("reading %s: %v", wcsPath, err)
	}
	if _, err := wcs.FromHeader(h); err != nil {
		t.Errorf("written header: %v", err)
	}
}

func TestSolveCommandNeedsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "solve", path); err == nil {
		t.Error("expected error without an API key")
	}
}

func TestBrowseNeedsTerminal(t *testing.T) {
	image := writeFITS(t, t.TempDir(), solvedHeader())
	_, err := runCmd(t, "browse", image)
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Errorf("err = %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "skyfield.yaml")
	if err := os.WriteFile(cfgPath, []byte("grid:\n  ra_count: 9\n  dec_count: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "config", "--config", cfgPath, "--log-level", "debug")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"ra_count: 9", "dec_count: 3", "log_level: debug", "provider: simbad"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
