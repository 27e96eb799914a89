package monitor

import "github.com/charmbracelet/lipgloss"

// Color constants
const (
	ColorPrimary = "39"  // Blue
	ColorSuccess = "42"  // Green
	ColorWarning = "214" // Orange
	ColorError   = "196" // Red
	ColorMuted   = "245" // Gray
)

// Styles holds the lipgloss styles used for human-readable monitor output.
type Styles struct {
	Progress lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultStyles returns the default monitor styles.
func DefaultStyles() Styles {
	return Styles{
		Progress: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimary)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted)),
	}
}

// Status icons
const (
	IconRunning = "●"
	IconSuccess = "✓"
	IconFailed  = "✗"
	IconTimeout = "⏱"
)

// PhaseIcon returns the icon for a phase.
func PhaseIcon(p Phase) string {
	switch p {
	case PhaseCompleted:
		return IconSuccess
	case PhaseFailed:
		return IconFailed
	case PhaseTimedOut:
		return IconTimeout
	default:
		return IconRunning
	}
}

// PhaseStyle returns the style for a phase.
func (s Styles) PhaseStyle(p Phase) lipgloss.Style {
	switch p {
	case PhaseCompleted:
		return s.Success
	case PhaseFailed:
		return s.Error
	case PhaseTimedOut:
		return s.Warning
	default:
		return s.Muted
	}
}
