package panel

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fleetdeck/fleetdeck/internal/metrics"
)

// Panel color palette.
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for utilization levels.
	ColorLow      = lipgloss.Color("#39FF14")
	ColorModerate = lipgloss.Color("#FFAA00")
	ColorHigh     = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	StaleStyle = lipgloss.NewStyle().
			Foreground(ColorModerate).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder).
				Bold(true)

	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorLow)

	StoppedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	PendingStyle = lipgloss.NewStyle().
			Foreground(ColorModerate)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorLow)

	StatusErrStyle = lipgloss.NewStyle().
			Foreground(ColorHigh)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorHigh).
			Background(ColorSurfaceBg).
			Padding(1, 2)
)

// levelStyle maps a utilization level to its color style.
func levelStyle(level metrics.Level) lipgloss.Style {
	switch level {
	case metrics.LevelLow:
		return lipgloss.NewStyle().Foreground(ColorLow)
	case metrics.LevelModerate:
		return lipgloss.NewStyle().Foreground(ColorModerate)
	default:
		return lipgloss.NewStyle().Foreground(ColorHigh)
	}
}

// Status indicator glyphs.
const (
	GlyphRunning = "◉"
	GlyphStopped = "◌"
	GlyphPending = "◐"
)
