package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	// Toggle button. The fixed width keeps the hit box stable across labels.
	button = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Bold(true).
		Align(lipgloss.Center).
		Width(ButtonContentWidth)

	ButtonIdle = button.
			Foreground(TextColor).
			BorderForeground(PrimaryColor)

	ButtonRunning = button.
			Foreground(SecondaryColor).
			BorderForeground(SecondaryColor)

	ButtonStopping = button.
			Foreground(WarningColor).
			BorderForeground(WarningColor)

	// Rule separates the canvas from the status panel
	Rule = lipgloss.NewStyle().Foreground(BorderColor)

	LogLine = lipgloss.NewStyle().Foreground(MutedColor)
)

// ButtonContentWidth is the width of the toggle button inside its border.
const ButtonContentWidth = 12

// ButtonWidth and ButtonHeight are the outer size of the toggle button.
const (
	ButtonWidth  = ButtonContentWidth + 2
	ButtonHeight = 3
)
