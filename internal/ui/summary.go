package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/litescript/ls-skyfield/internal/astro"
	"github.com/litescript/ls-skyfield/internal/skymap"
)

// WriteSummary prints a plain-text overview of a product, suitable for
// pipes and log files. At most maxRows objects are listed; 0 lists all.
func WriteSummary(w io.Writer, p *skymap.Product, maxRows int) {
	fmt.Fprintf(w, "Field %s %s  radius %.3f°  %dx%d px  %s  %.3f\"/px\n",
		astro.FormatRA(p.Field.Center.RAdeg), astro.FormatDec(p.Field.Center.DecDeg),
		p.Field.Radius, p.Width, p.Height, p.Projection, p.PixelScale)
	fmt.Fprintln(w, strings.Repeat("─", 84))

	for _, warn := range p.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if len(p.Overlays) == 0 {
		fmt.Fprintln(w, "No objects in the field")
	} else {
		fmt.Fprintf(w, "%-20s %-22s %8s %8s %7s %7s %7s\n",
			"Name", "Type", "X", "Y", "RX", "RY", "Angle")
		fmt.Fprintln(w, strings.Repeat("─", 84))
		for i, r := range p.Overlays {
			if maxRows > 0 && i == maxRows {
				fmt.Fprintf(w, "... %d more\n", len(p.Overlays)-maxRows)
				break
			}
			fmt.Fprintf(w, "%-20s %-22s %8.1f %8.1f %7.1f %7.1f %7.1f\n",
				truncate(r.ID, 20), truncate(r.Type, 22), r.X, r.Y, r.RX, r.RY, r.Rotation)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d overlays from %d %s objects (outside %d, duplicate %d, off-image %d, too small %d); %d HR, %d PM points\n",
		len(p.Overlays), p.Queried, p.Catalog,
		p.Dropped.OutsideField, p.Dropped.Duplicate, p.Dropped.NonFinite, p.Dropped.TooSmall,
		len(p.Plots.HR), len(p.Plots.PM))
}

// RenderSummary renders the overview as a styled table for terminals.
func RenderSummary(p *skymap.Product, maxRows int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Field"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s  radius %.3f°  %dx%d px  %s  %.3f\"/px",
		astro.FormatRA(p.Field.Center.RAdeg), astro.FormatDec(p.Field.Center.DecDeg),
		p.Field.Radius, p.Width, p.Height, p.Projection, p.PixelScale)))
	b.WriteString("\n")
	for _, warn := range p.Warnings {
		b.WriteString(warnStyle.Render("! "+warn) + "\n")
	}

	recs := p.Overlays
	if maxRows > 0 && len(recs) > maxRows {
		recs = recs[:maxRows]
	}
	rows := make([][]string, 0, len(recs))
	colors := make([]lipgloss.Color, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			"●",
			truncate(r.ID, 24),
			truncate(r.Type, 24),
			fmt.Sprintf("%.1f", r.X),
			fmt.Sprintf("%.1f", r.Y),
			fmt.Sprintf("%.1f", r.RX),
			fmt.Sprintf("%.1f", r.RY),
			fmt.Sprintf("%.1f", r.Rotation),
		})
		colors = append(colors, lipgloss.Color(r.Color))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("", "Name", "Type", "X", "Y", "RX", "RY", "Angle").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 && row >= 0 && row < len(colors):
				return lipgloss.NewStyle().Foreground(colors[row]).Padding(0, 1)
			case col >= 3:
				return rowStyle.Padding(0, 1).Align(lipgloss.Right)
			default:
				return rowStyle.Padding(0, 1)
			}
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(recs) < len(p.Overlays) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("showing %d of %d objects", len(recs), len(p.Overlays))))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d objects from %s | dropped: outside %d, duplicate %d, off-image %d, too small %d | %d HR, %d PM points",
		p.Queried, p.Catalog,
		p.Dropped.OutsideField, p.Dropped.Duplicate, p.Dropped.NonFinite, p.Dropped.TooSmall,
		len(p.Plots.HR), len(p.Plots.PM))))
	b.WriteString("\n")
	return b.String()
}
