package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/PassLock/internal/models"
)

// colorPalette maps the indicator colours of the device.
const (
	colorOff    = lipgloss.Color("238")
	colorBlue   = lipgloss.Color("33")
	colorYellow = lipgloss.Color("220")
	colorPurple = lipgloss.Color("129")
	colorGreen  = lipgloss.Color("40")
	colorRed    = lipgloss.Color("196")
	colorSubtle = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("231")
)

var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true).
			MarginBottom(1)

	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Foreground(colorRed).
			Bold(true).
			Padding(0, 2)

	digitStyle = lipgloss.NewStyle().Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	helpStyle = lipgloss.NewStyle().Foreground(colorSubtle).MarginTop(1)
)

// modeColor is the steady indicator colour for a mode.
func modeColor(m models.Mode) lipgloss.Color {
	switch m {
	case models.ModeCheck:
		return colorBlue
	case models.ModeSet:
		return colorYellow
	case models.ModeRemove:
		return colorPurple
	default:
		return colorOff
	}
}

// verdictColor is the status flash colour for a verdict.
func verdictColor(v models.Verdict) lipgloss.Color {
	switch v {
	case models.VerdictAccept:
		return colorGreen
	case models.VerdictReject:
		return colorRed
	default:
		return colorOff
	}
}

func lamp(c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render("●")
}
