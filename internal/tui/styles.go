package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorBase     = lipgloss.Color("#1E1E2E") // background
	colorSurface0 = lipgloss.Color("#313244") // card bg
	colorSurface1 = lipgloss.Color("#45475A") // lighter surface
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – primary accent
	colorBlue     = lipgloss.Color("#89B4FA") // section headers
	colorSapphire = lipgloss.Color("#74C7EC") // keys
	colorRed      = lipgloss.Color("#F38BA8") // error
	colorLavender = lipgloss.Color("#B4BEFE") // titles
	colorPeach    = lipgloss.Color("#FAB387") // today marker
)

// Workflow stage colors, matched by substring of the status label.
var statusColors = []struct {
	marker string
	color  lipgloss.Color
}{
	{"Sheet", lipgloss.Color("#DDF864")},
	{"Canva", lipgloss.Color("#2275D3")},
	{"WP", lipgloss.Color("#EBB747")},
	{"Veröffentlichung", lipgloss.Color("#13CE39")},
}

func statusColor(status string) lipgloss.Color {
	for _, sc := range statusColors {
		if strings.Contains(status, sc.marker) {
			return sc.color
		}
	}
	return colorSubtext
}

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorSapphire).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Foreground(colorPeach).
			Bold(true)

	screenTabActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBase).
				Background(colorAccent).
				Padding(0, 1)

	screenTabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSubtext).
				Background(colorSurface0).
				Padding(0, 1)
)
