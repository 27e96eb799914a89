package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent  = "86"  // Cyan/green - for titles, built targets
	ColorDanger  = "196" // Red - for errors
	ColorWarning = "208" // Orange - for warnings
	ColorMuted   = "241" // Gray - for dimmed text, hints
	ColorText    = "252" // Light gray - for normal text
)

// Styles contains shared style definitions used across the watch screen.
var Styles = struct {
	Title   lipgloss.Style // Bold accent color - for the header
	Box     lipgloss.Style // Standard box with rounded border
	Success lipgloss.Style // Built targets, completed phase
	Danger  lipgloss.Style // Errors, failed phase
	Warning lipgloss.Style // Warning counts
	Muted   lipgloss.Style // Dimmed text (elapsed, hints)
	Normal  lipgloss.Style // Normal text
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(1, 2),
	Success: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	Danger: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
}
