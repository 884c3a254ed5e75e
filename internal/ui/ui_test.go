package ui

import (
	"bytes"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/fov"
	"github.com/litescript/ls-skyfield/internal/grid"
	"github.com/litescript/ls-skyfield/internal/overlay"
	"github.com/litescript/ls-skyfield/internal/photometry"
	"github.com/litescript/ls-skyfield/internal/skymap"
	"github.com/litescript/ls-skyfield/internal/wcs"
)

func testProduct() *skymap.Product {
	sp := "G2V"
	dist := 32.6
	return &skymap.Product{
		Width:      1000,
		Height:     500,
		Projection: "TAN",
		PixelScale: 3.6,
		Field: fov.Field{
			RAMin: 9.5, RAMax: 10.5, DecMin: 19.5, DecMax: 20.5,
			Center: astro.SkyCoord{RAdeg: 10, DecDeg: 20},
			Radius: 0.72,
		},
		Catalog: "test",
		Queried: 4,
		Overlays: []overlay.Record{
			{ID: "NGC 1", X: 500, Y: 250, RX: 100, RY: 50, Type: "Galaxy", Code: "G", Color: "#dfcf28"},
			{ID: "NGC 2", X: 100, Y: 100, RX: 30, RY: 30, Rotation: 45, Type: "Galaxy", Code: "G", Color: "#dfcf28"},
		},
		Dropped: overlay.Dropped{TooSmall: 2},
		Grid: grid.Grid{
			RALines: []grid.Line{{Axis: grid.AxisRA, Value: 10, Points: []wcs.Pixel{{X: 500, Y: 0}, {X: 500, Y: 499}}}},
			Labels:  []grid.Label{{Axis: grid.AxisRA, Text: "00h40m", X: 485, Y: 240}},
		},
		Plots: skymap.Plots{
			HR: []photometry.Point{
				{ID: "HD 1", X: 0.65, Y: 4.8, Size: 8, Color: "#fff4e8", SpectralClass: &sp, DistanceLy: &dist},
				{ID: "HD 2", X: 1.5, Y: 0.2, Size: 12, Color: "#ffc080"},
			},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func TestViewSwitching(t *testing.T) {
	m := sized(New(testProduct(), "m31.xisf"))

	tests := []struct {
		key  string
		want ViewMode
	}{
		{"2", ViewField},
		{"3", ViewHR},
		{"4", ViewPM},
		{"tab", ViewObjects},
		{"tab", ViewField},
		{"o", ViewObjects},
		{"p", ViewPM},
	}
	for _, tt := range tests {
		next, _ := m.Update(key(tt.key))
		m = next.(Model)
		if m.viewMode != tt.want {
			t.Errorf("after %q view = %d, want %d", tt.key, m.viewMode, tt.want)
		}
		if m.View() == "" {
			t.Errorf("empty view after %q", tt.key)
		}
	}
}

func TestQuit(t *testing.T) {
	m := sized(New(testProduct(), "x"))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestEnterOpensFieldOnSelection(t *testing.T) {
	m := sized(New(testProduct(), "x"))

	next, _ := m.Update(key("down"))
	m = next.(Model)
	next, cmd := m.Update(key("enter"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	msg := cmd()
	open, ok := msg.(OpenFieldMsg)
	if !ok || open.Index != 1 {
		t.Fatalf("msg = %#v", msg)
	}

	next, _ = m.Update(msg)
	m = next.(Model)
	if m.viewMode != ViewField {
		t.Errorf("view = %d, want field", m.viewMode)
	}
	if r, ok := m.field.Focused(); !ok || r.ID != "NGC 2" {
		t.Errorf("focused = %+v", r)
	}
}

func TestInitializingBeforeSize(t *testing.T) {
	if got := New(testProduct(), "x").View(); got != "Initializing..." {
		t.Errorf("View = %q", got)
	}
}

func TestFieldCanvas(t *testing.T) {
	m := NewFieldModel().SetProduct(testProduct())
	c := m.renderCanvas(100, 50)

	// image 1000x500 onto 100x50 cells: (500, 250) lands near (50, 25)
	if got := c.at(50, 25); got != glyphObjectFocused {
		t.Errorf("centre cell = %q, want focused glyph", got)
	}
	if got := c.at(10, 10); got != glyphObject {
		t.Errorf("second object cell = %q", got)
	}
	if got := c.at(48, 24); got != glyphGrid {
		t.Errorf("grid label anchor = %q", got)
	}

	m = m.SetFocus(1)
	c = m.renderCanvas(100, 50)
	if got := c.at(10, 10); got != glyphObjectFocused {
		t.Errorf("refocused cell = %q", got)
	}
	// out-of-range focus is ignored
	if m.SetFocus(5).focusIdx != 1 {
		t.Error("SetFocus accepted an invalid index")
	}
}

func TestFieldKeys(t *testing.T) {
	m := NewFieldModel().SetProduct(testProduct())
	m, _ = m.Update(key("j"))
	if m.focusIdx != 1 {
		t.Errorf("focus = %d", m.focusIdx)
	}
	m, _ = m.Update(key("j"))
	if m.focusIdx != 0 {
		t.Errorf("focus did not wrap: %d", m.focusIdx)
	}
	m, _ = m.Update(key("k"))
	if m.focusIdx != 1 {
		t.Errorf("focus did not wrap backwards: %d", m.focusIdx)
	}
	m, _ = m.Update(key("l"))
	if m.labelMode != LabelAll {
		t.Errorf("label mode = %d", m.labelMode)
	}
	m, _ = m.Update(key("g"))
	if m.showGrid {
		t.Error("grid still shown")
	}
}

func TestPlotOrientation(t *testing.T) {
	p := testProduct()
	hr := NewPlotModel(PlotHR).SetPoints(p.Plots.HR)
	xmin, xmax, ymin, ymax := bounds(hr.points)
	c := newCanvas(60, 30)

	// HD 2 is brighter (smaller M) so it sits above HD 1
	_, y1, _ := hr.cell(p.Plots.HR[0], c, xmin, xmax, ymin, ymax)
	_, y2, _ := hr.cell(p.Plots.HR[1], c, xmin, xmax, ymin, ymax)
	if y2 >= y1 {
		t.Errorf("HR rows: bright %d, faint %d", y2, y1)
	}

	pm := NewPlotModel(PlotPM)
	north := photometry.Point{X: 0, Y: 10}
	south := photometry.Point{X: 0, Y: -10}
	_, yn, _ := pm.cell(north, c, -20, 20, -20, 20)
	_, ys, _ := pm.cell(south, c, -20, 20, -20, 20)
	if yn >= ys {
		t.Errorf("PM rows: north %d, south %d", yn, ys)
	}
}

func TestPlotEmpty(t *testing.T) {
	out := NewPlotModel(PlotPM).SetSize(80, 30).View()
	if !strings.Contains(out, "No points") {
		t.Errorf("View = %q", out)
	}
}

func TestScaleTo(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		n         int
		want      int
		ok        bool
	}{
		{0, 0, 10, 11, 0, true},
		{10, 0, 10, 11, 10, true},
		{5, 0, 10, 11, 5, true},
		{11, 0, 10, 11, 11, false},
		{-1, 0, 10, 11, -1, false},
		{3, 3, 3, 10, 5, true},
		{math.NaN(), 0, 10, 11, 0, false},
	}
	for _, tt := range tests {
		got, ok := scaleTo(tt.v, tt.lo, tt.hi, tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("scaleTo(%v, %v, %v, %d) = %d, %v; want %d, %v",
				tt.v, tt.lo, tt.hi, tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRenderCountBar(t *testing.T) {
	tests := []struct {
		frac       float64
		wantFilled int
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 10},
		{-0.2, 0},
	}
	for _, tt := range tests {
		bar := renderCountBar(tt.frac, 10)
		if !strings.HasPrefix(bar, "[") || !strings.HasSuffix(bar, "]") {
			t.Errorf("bar should have brackets, got %q", bar)
		}
		if got := strings.Count(bar, "█"); got != tt.wantFilled {
			t.Errorf("frac %v: filled = %d, want %d", tt.frac, got, tt.wantFilled)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, testProduct(), 1)
	out := buf.String()

	for _, want := range []string{"00h 40m 00.0s", "NGC 1", "... 1 more", "Total: 2 overlays from 4 test objects", "too small 2", "2 HR, 0 PM"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NGC 2") {
		t.Error("row limit ignored")
	}
}

func TestWriteSummaryEmpty(t *testing.T) {
	p := testProduct()
	p.Overlays = nil
	p.Warnings = []string{skymap.ErrEmptyCatalogResult.Error()}

	var buf bytes.Buffer
	WriteSummary(&buf, p, 0)
	if !strings.Contains(buf.String(), "No objects in the field") || !strings.Contains(buf.String(), "warning: catalog returned no objects") {
		t.Errorf("summary:\n%s", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(testProduct(), 1)
	for _, want := range []string{"NGC 1", "Galaxy", "showing 1 of 2 objects"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered summary lacks %q:\n%s", want, out)
		}
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 1); !strings.EqualFold(got, "#3b82f6") {
		t.Errorf("first stop = %s", got)
	}
	if got := gradientColor(5, 0, 10, 2); len(got) != 7 || got[0] != '#' {
		t.Errorf("gradient color = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"Messier 31 Andromeda", 10, "Messier..."},
		{"abc", 2, "ab"},
		{"Ωmega Centauri", 6, "Ωme..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
