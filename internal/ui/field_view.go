package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyfield/internal/grid"
	"github.com/litescript/ls-skyfield/internal/overlay"
	"github.com/litescript/ls-skyfield/internal/skymap"
)

const (
	glyphObject        = '○'
	glyphObjectFocused = '◆'
	glyphOutline       = '·'
	glyphGrid          = '┼'

	colorFocused  = lipgloss.Color("229")
	colorRALine   = lipgloss.Color("60")
	colorDecLine  = lipgloss.Color("61")
	colorGridText = lipgloss.Color("245")

	outlineSamples = 32
)

// LabelMode controls which object names are drawn.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused object
	LabelAll                      // Every object
)

// FieldModel draws the image frame with the coordinate grid and the overlay
// ellipses, scaled to the terminal.
type FieldModel struct {
	width     int
	height    int
	product   *skymap.Product
	focusIdx  int
	labelMode LabelMode
	showGrid  bool
}

// NewFieldModel creates a field view showing the grid and the focused label.
func NewFieldModel() FieldModel {
	return FieldModel{labelMode: LabelFocused, showGrid: true}
}

// SetSize updates the viewport size.
func (m FieldModel) SetSize(width, height int) FieldModel {
	m.width = width
	m.height = height
	return m
}

// SetProduct replaces the displayed product.
func (m FieldModel) SetProduct(p *skymap.Product) FieldModel {
	m.product = p
	m.focusIdx = 0
	return m
}

// SetFocus focuses the overlay at index i.
func (m FieldModel) SetFocus(i int) FieldModel {
	if m.product != nil && i >= 0 && i < len(m.product.Overlays) {
		m.focusIdx = i
	}
	return m
}

// Focused returns the focused record.
func (m FieldModel) Focused() (overlay.Record, bool) {
	if m.product == nil || m.focusIdx >= len(m.product.Overlays) {
		return overlay.Record{}, false
	}
	return m.product.Overlays[m.focusIdx], true
}

// Update handles focus, label and grid keys.
func (m FieldModel) Update(msg tea.Msg) (FieldModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.product == nil {
		return m, nil
	}
	n := len(m.product.Overlays)
	switch key.String() {
	case "down", "j":
		if n > 0 {
			m.focusIdx = (m.focusIdx + 1) % n
		}
	case "up", "k":
		if n > 0 {
			m.focusIdx = (m.focusIdx - 1 + n) % n
		}
	case "l":
		m.labelMode = (m.labelMode + 1) % 3
	case "g":
		m.showGrid = !m.showGrid
	}
	return m, nil
}

// View renders the field canvas.
func (m FieldModel) View() string {
	if m.product == nil {
		return "No product loaded"
	}
	if m.width < 20 || m.height < 10 {
		return "Field view requires larger terminal"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCanvas(m.width, m.height-4).String())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m FieldModel) renderHeader() string {
	title := titleStyle.Render("Field")
	labels := [...]string{"labels: off", "labels: focused", "labels: all"}[m.labelMode]
	gridState := "grid: on"
	if !m.showGrid {
		gridState = "grid: off"
	}
	return title + "  " + dimStyle.Render(fmt.Sprintf("%d x %d px | %s | %s",
		m.product.Width, m.product.Height, labels, gridState))
}

func (m FieldModel) renderStatus() string {
	r, ok := m.Focused()
	if !ok {
		return dimStyle.Render("no objects")
	}
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render("●")
	return fmt.Sprintf("%s %s  %s  (%.1f, %.1f)  %.1f x %.1f px  %.1f°",
		swatch, titleStyle.Render(r.ID), dimStyle.Render(r.Type), r.X, r.Y, r.RX, r.RY, r.Rotation)
}

// toCell maps an image pixel to a canvas cell. Image rows grow downward,
// like terminal rows.
func (m FieldModel) toCell(x, y float64, c *canvas) (int, int, bool) {
	cx, okx := scaleTo(x, 0, float64(m.product.Width), c.width)
	cy, oky := scaleTo(y, 0, float64(m.product.Height), c.height)
	return cx, cy, okx && oky
}

func (m FieldModel) renderCanvas(width, height int) *canvas {
	c := newCanvas(width, height)

	if m.showGrid {
		m.drawGrid(c)
	}

	// smaller objects last so they stay visible inside large ones
	for i, r := range m.product.Overlays {
		if i == m.focusIdx {
			continue
		}
		m.drawObject(c, r, false)
	}
	if r, ok := m.Focused(); ok {
		m.drawObject(c, r, true)
	}
	return c
}

func (m FieldModel) drawGrid(c *canvas) {
	draw := func(lines []grid.Line, color lipgloss.Color) {
		for _, l := range lines {
			for i := 1; i < len(l.Points); i++ {
				x0, y0, ok0 := m.toCell(l.Points[i-1].X, l.Points[i-1].Y, c)
				x1, y1, ok1 := m.toCell(l.Points[i].X, l.Points[i].Y, c)
				if ok0 || ok1 {
					c.line(x0, y0, x1, y1, glyphOutline, color)
				}
			}
		}
	}
	draw(m.product.Grid.RALines, colorRALine)
	draw(m.product.Grid.DecLines, colorDecLine)

	for _, lbl := range m.product.Grid.Labels {
		if x, y, ok := m.toCell(lbl.X, lbl.Y, c); ok {
			c.set(x, y, glyphGrid, colorGridText)
			c.text(x+1, y, lbl.Text, colorGridText)
		}
	}
}

func (m FieldModel) drawObject(c *canvas, r overlay.Record, focused bool) {
	color := lipgloss.Color(r.Color)
	if focused {
		color = colorFocused
	}

	rot := r.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rot)
	for i := 0; i < outlineSamples; i++ {
		t := 2 * math.Pi * float64(i) / outlineSamples
		ex, ey := r.RX*math.Cos(t), r.RY*math.Sin(t)
		if x, y, ok := m.toCell(r.X+ex*cos-ey*sin, r.Y+ex*sin+ey*cos, c); ok {
			c.set(x, y, glyphOutline, color)
		}
	}

	x, y, ok := m.toCell(r.X, r.Y, c)
	if !ok {
		return
	}
	glyph := glyphObject
	if focused {
		glyph = glyphObjectFocused
	}
	c.set(x, y, glyph, color)

	if m.labelMode == LabelAll || (m.labelMode == LabelFocused && focused) {
		label := truncate(r.ID, 24)
		lx := x + 2
		if lx+len([]rune(label)) > c.width {
			lx = x - 1 - len([]rune(label))
		}
		c.text(lx, y, label, color)
	}
}
