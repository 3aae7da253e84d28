package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBlue).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorSubtle).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	completedStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Strikethrough(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	overdueStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	checkStyle = lipgloss.NewStyle().
			Foreground(colorGreen)
)

// tagStyle renders a tag chip in the tag's own color when it has one.
func tagStyle(color *string) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 1)

	if color == nil || *color == "" {
		return style.Foreground(colorWhite).Background(colorSubtle)
	}

	return style.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(*color))
}
