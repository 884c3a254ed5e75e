package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/overlay"
	"github.com/litescript/ls-skyfield/internal/skymap"
)

// Styles shared by the views.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("60"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// ObjectsModel lists the overlay records with a field summary above.
type ObjectsModel struct {
	width   int
	height  int
	cursor  int
	product *skymap.Product
}

// NewObjectsModel creates an empty objects view.
func NewObjectsModel() ObjectsModel {
	return ObjectsModel{}
}

// SetSize updates the viewport size.
func (m ObjectsModel) SetSize(width, height int) ObjectsModel {
	m.width = width
	m.height = height
	return m
}

// SetProduct replaces the displayed product.
func (m ObjectsModel) SetProduct(p *skymap.Product) ObjectsModel {
	m.product = p
	if m.cursor >= m.count() {
		m.cursor = 0
	}
	return m
}

func (m ObjectsModel) count() int {
	if m.product == nil {
		return 0
	}
	return len(m.product.Overlays)
}

// Update handles navigation keys. Enter opens the selected object in the
// field view.
func (m ObjectsModel) Update(msg tea.Msg) (ObjectsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	n := m.count()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if n > 0 {
			m.cursor = n - 1
		}
	case "enter":
		if n > 0 {
			idx := m.cursor
			return m, func() tea.Msg { return OpenFieldMsg{Index: idx} }
		}
	}
	return m, nil
}

// Selected returns the record under the cursor.
func (m ObjectsModel) Selected() (overlay.Record, bool) {
	if m.cursor < 0 || m.cursor >= m.count() {
		return overlay.Record{}, false
	}
	return m.product.Overlays[m.cursor], true
}

// View renders the summary and the object table.
func (m ObjectsModel) View() string {
	if m.product == nil {
		return "No product loaded\n"
	}

	var b strings.Builder
	b.WriteString(m.renderFieldSummary())
	b.WriteString("\n")
	b.WriteString(m.renderTable())
	return b.String()
}

func (m ObjectsModel) renderFieldSummary() string {
	p := m.product
	var b strings.Builder

	b.WriteString(titleStyle.Render("Field"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Centre   %s  %s   radius %.3f°\n",
		astro.FormatRA(p.Field.Center.RAdeg), astro.FormatDec(p.Field.Center.DecDeg), p.Field.Radius)
	fmt.Fprintf(&b, "  Image    %d x %d px  %s  %.3f\"/px\n", p.Width, p.Height, p.Projection, p.PixelScale)
	fmt.Fprintf(&b, "  Catalog  %s, %d objects, %d overlays\n", p.Catalog, p.Queried, len(p.Overlays))

	dropped := []struct {
		name  string
		count int
	}{
		{"outside", p.Dropped.OutsideField},
		{"duplicate", p.Dropped.Duplicate},
		{"off-image", p.Dropped.NonFinite},
		{"too small", p.Dropped.TooSmall},
	}
	for _, d := range dropped {
		frac := 0.0
		if p.Queried > 0 {
			frac = float64(d.count) / float64(p.Queried)
		}
		fmt.Fprintf(&b, "  %-9s %s %d\n", d.name, renderCountBar(frac, 10), d.count)
	}

	for _, w := range p.Warnings {
		b.WriteString("  " + warnStyle.Render("! "+w) + "\n")
	}
	return b.String()
}

// renderCountBar draws a bracketed bar filled to frac of width.
func renderCountBar(frac float64, width int) string {
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + dimStyle.Render(bar) + "]"
}

func (m ObjectsModel) renderTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Objects"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-20s %-22s %8s %8s %7s %7s %7s",
		"Name", "Type", "X", "Y", "RX", "RY", "Angle")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	recs := m.product.Overlays
	if len(recs) == 0 {
		b.WriteString("  No objects in the field\n")
		return b.String()
	}

	maxRows := m.height - 14
	if maxRows < 5 {
		maxRows = 5
	}
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	end := min(start+maxRows, len(recs))

	for i := start; i < end; i++ {
		r := recs[i]
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render("●")
		row := fmt.Sprintf("%-20s %-22s %8.1f %8.1f %7.1f %7.1f %7.1f",
			truncate(r.ID, 20), truncate(r.Type, 22), r.X, r.Y, r.RX, r.RY, r.Rotation)
		if i == m.cursor {
			b.WriteString(swatch + " " + selectedRowStyle.Render(row))
		} else {
			b.WriteString(swatch + " " + rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(recs) > maxRows {
		fmt.Fprintf(&b, "\n  Showing %d-%d of %d objects", start+1, end, len(recs))
	}
	return b.String()
}
