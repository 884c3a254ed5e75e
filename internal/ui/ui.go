// Package ui provides the terminal browser for sky-overlay products using
// Bubble Tea, plus plain and styled summaries for headless output.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-skyfield/internal/skymap"
	"github.com/litescript/ls-skyfield/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewObjects ViewMode = iota
	ViewField
	ViewHR
	ViewPM
	viewCount
)

// OpenFieldMsg requests the field view focused on an overlay record.
type OpenFieldMsg struct {
	Index int
}

// Model is the root Bubble Tea model.
type Model struct {
	product *skymap.Product
	source  string

	viewMode ViewMode
	width    int
	height   int
	ready    bool

	objects ObjectsModel
	field   FieldModel
	hr      PlotModel
	pm      PlotModel
}

// New creates a browser for one product. source names the image it was
// built from.
func New(p *skymap.Product, source string) Model {
	return Model{
		product:  p,
		source:   source,
		viewMode: ViewObjects,
		objects:  NewObjectsModel().SetProduct(p),
		field:    NewFieldModel().SetProduct(p),
		hr:       NewPlotModel(PlotHR).SetPoints(p.Plots.HR),
		pm:       NewPlotModel(PlotPM).SetPoints(p.Plots.PM),
	}
}

// Run starts the browser in the alternate screen and blocks until quit.
func Run(p *skymap.Product, source string) error {
	prog := tea.NewProgram(New(p, source), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1", "o":
			m.viewMode = ViewObjects
		case "2", "f":
			m.viewMode = ViewField
		case "3", "h":
			m.viewMode = ViewHR
		case "4", "p":
			m.viewMode = ViewPM
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount
		case "shift+tab":
			m.viewMode = (m.viewMode + viewCount - 1) % viewCount
		default:
			cmd := m.updateActiveView(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// header takes 5 lines, footer 2
		contentHeight := msg.Height - 7
		m.objects = m.objects.SetSize(msg.Width, contentHeight)
		m.field = m.field.SetSize(msg.Width, contentHeight)
		m.hr = m.hr.SetSize(msg.Width, contentHeight)
		m.pm = m.pm.SetSize(msg.Width, contentHeight)

	case OpenFieldMsg:
		m.field = m.field.SetFocus(msg.Index)
		m.viewMode = ViewField

	default:
		cmd := m.updateActiveView(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewObjects:
		m.objects, cmd = m.objects.Update(msg)
	case ViewField:
		m.field, cmd = m.field.Update(msg)
	case ViewHR:
		m.hr, cmd = m.hr.Update(msg)
	case ViewPM:
		m.pm, cmd = m.pm.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewObjects:
		content = m.objects.View()
	case ViewField:
		content = m.field.View()
	case ViewHR:
		content = m.hr.View()
	case ViewPM:
		content = m.pm.View()
	}
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderGradient("  ls-skyfield", 0))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("v%s · %s", version.Version, m.source)))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

// renderGradient colors text along the logo gradient.
func renderGradient(text string, row int) string {
	runes := []rune(text)
	var b strings.Builder
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, row, len(runes), 1)))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// gradientStops run blue, purple, magenta, pink.
var gradientStops = []string{"#3B82F6", "#8B5CF6", "#D946EF", "#EC4899"}

// gradientColor returns a hex color for a position in the logo gradient,
// blending horizontally through the stops and darkening toward the bottom.
func gradientColor(col, row, width, height int) string {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	segments := len(gradientStops) - 1
	pos := xRatio * float64(segments)
	i := min(int(pos), segments-1)
	from, _ := colorful.Hex(gradientStops[i])
	to, _ := colorful.Hex(gradientStops[i+1])
	c := from.BlendLab(to, pos-float64(i))

	black := colorful.Color{}
	return c.BlendRgb(black, yRatio*0.5).Clamped().Hex()
}

func (m Model) renderTabs() string {
	tabs := []string{
		fmt.Sprintf("[1] Objects (%d)", len(m.product.Overlays)),
		"[2] Field",
		fmt.Sprintf("[3] HR (%d)", len(m.product.Plots.HR)),
		fmt.Sprintf("[4] PM (%d)", len(m.product.Plots.PM)),
	}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	var help string
	switch m.viewMode {
	case ViewObjects:
		help = "↑↓: navigate | enter: show in field"
	case ViewField:
		help = "j/k: focus | l: labels | g: grid"
	default:
		help = "j/k: select point"
	}
	return "  " + dimStyle.Render(help+" | tab: switch view | q: quit")
}
