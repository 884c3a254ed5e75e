package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyfield/internal/photometry"
)

// PlotKind selects a classification diagram.
type PlotKind int

const (
	PlotHR PlotKind = iota
	PlotPM
)

func (k PlotKind) title() string {
	if k == PlotPM {
		return "Proper Motion"
	}
	return "Hertzsprung-Russell"
}

func (k PlotKind) axes() (string, string) {
	if k == PlotPM {
		return "pmRA mas/yr", "pmDec mas/yr"
	}
	return "B-V", "M(V)"
}

// PlotModel is a scatter plot of diagram points with a selectable cursor.
type PlotModel struct {
	kind   PlotKind
	width  int
	height int
	points []photometry.Point
	cursor int
}

// NewPlotModel creates an empty plot of the given kind.
func NewPlotModel(kind PlotKind) PlotModel {
	return PlotModel{kind: kind}
}

// SetSize updates the viewport size.
func (m PlotModel) SetSize(width, height int) PlotModel {
	m.width = width
	m.height = height
	return m
}

// SetPoints replaces the plotted points.
func (m PlotModel) SetPoints(points []photometry.Point) PlotModel {
	m.points = points
	m.cursor = 0
	return m
}

// Update moves the cursor between points.
func (m PlotModel) Update(msg tea.Msg) (PlotModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.points) == 0 {
		return m, nil
	}
	n := len(m.points)
	switch key.String() {
	case "down", "j":
		m.cursor = (m.cursor + 1) % n
	case "up", "k":
		m.cursor = (m.cursor - 1 + n) % n
	}
	return m, nil
}

// Selected returns the point under the cursor.
func (m PlotModel) Selected() (photometry.Point, bool) {
	if m.cursor < 0 || m.cursor >= len(m.points) {
		return photometry.Point{}, false
	}
	return m.points[m.cursor], true
}

// View renders the plot.
func (m PlotModel) View() string {
	if len(m.points) == 0 {
		return titleStyle.Render(m.kind.title()) + "\n\n  No points for this diagram\n"
	}
	if m.width < 20 || m.height < 10 {
		return "Plot view requires larger terminal"
	}

	xmin, xmax, ymin, ymax := bounds(m.points)
	xl, yl := m.kind.axes()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.kind.title()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %.2f..%.2f | %s %.2f..%.2f | %d points",
		xl, xmin, xmax, yl, ymin, ymax, len(m.points))))
	b.WriteString("\n")
	b.WriteString(m.renderCanvas(m.width, m.height-4).String())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// bounds returns the data range padded by 5% on each side.
func bounds(points []photometry.Point) (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	px, py := (xmax-xmin)*0.05, (ymax-ymin)*0.05
	return xmin - px, xmax + px, ymin - py, ymax + py
}

// cell places a point on the canvas. Brighter stars (smaller M) sit at the
// top of the HR diagram; north is up on the proper-motion diagram.
func (m PlotModel) cell(p photometry.Point, c *canvas, xmin, xmax, ymin, ymax float64) (int, int, bool) {
	x, okx := scaleTo(p.X, xmin, xmax, c.width)
	y, oky := scaleTo(p.Y, ymin, ymax, c.height)
	if m.kind == PlotPM {
		y = c.height - 1 - y
	}
	return x, y, okx && oky
}

func pointGlyph(size float64) rune {
	switch {
	case size >= 14:
		return '●'
	case size >= photometry.MainSequenceSize:
		return '•'
	default:
		return '·'
	}
}

func (m PlotModel) renderCanvas(width, height int) *canvas {
	c := newCanvas(width, height)
	xmin, xmax, ymin, ymax := bounds(m.points)

	if m.kind == PlotPM {
		// zero-motion crosshair
		if x, ok := scaleTo(0, xmin, xmax, width); ok {
			c.line(x, 0, x, height-1, '│', colorRALine)
		}
		if y, ok := scaleTo(0, ymin, ymax, height); ok {
			c.line(0, height-1-y, width-1, height-1-y, '─', colorRALine)
		}
	}

	for i, p := range m.points {
		if i == m.cursor {
			continue
		}
		if x, y, ok := m.cell(p, c, xmin, xmax, ymin, ymax); ok {
			c.set(x, y, pointGlyph(p.Size), lipgloss.Color(p.Color))
		}
	}
	if p, ok := m.Selected(); ok {
		if x, y, ok := m.cell(p, c, xmin, xmax, ymin, ymax); ok {
			c.set(x, y, glyphObjectFocused, colorFocused)
		}
	}
	return c
}

func (m PlotModel) renderStatus() string {
	p, ok := m.Selected()
	if !ok {
		return ""
	}
	parts := []string{titleStyle.Render(p.ID), dimStyle.Render(p.ObjectType)}
	if p.SpectralClass != nil {
		parts = append(parts, *p.SpectralClass)
	}
	parts = append(parts, fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y))
	if p.DistanceLy != nil {
		parts = append(parts, fmt.Sprintf("%.0f ly", *p.DistanceLy))
	}
	if p.Pixel != nil {
		parts = append(parts, fmt.Sprintf("px (%.0f, %.0f)", p.Pixel.X, p.Pixel.Y))
	}
	return strings.Join(parts, "  ")
}
