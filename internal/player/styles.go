package player

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorAccent  = lipgloss.Color("#FFD700")
	colorDanger  = lipgloss.Color("#FF5252")
	colorMuted   = lipgloss.Color("#8C8C8C")
)

// Styles groups the player's text styles.
type Styles struct {
	Title  lipgloss.Style
	Choice lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style
	Body   lipgloss.Style
}

// NewStyles returns the colored palette, or unstyled text when color is
// false. width wraps passage bodies; zero disables wrapping.
func NewStyles(color bool, width int) Styles {
	body := lipgloss.NewStyle()
	if width > 0 {
		body = body.Width(width)
	}
	if !color {
		return Styles{
			Title:  lipgloss.NewStyle(),
			Choice: lipgloss.NewStyle(),
			Error:  lipgloss.NewStyle(),
			Muted:  lipgloss.NewStyle(),
			Body:   body,
		}
	}
	return Styles{
		Title:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Choice: lipgloss.NewStyle().Foreground(colorAccent),
		Error:  lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Body:   body,
	}
}
