package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the core UI styles
var Theme = struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Help       lipgloss.Style
	Error      lipgloss.Style
	Pane       lipgloss.Style
}{}

func init() {
	Apply(map[string]string{
		"primary":  "213",
		"success":  "114",
		"error":    "196",
		"info":     "39",
		"emphasis": "212",
		"border":   "213",
	})
}

// Apply rebuilds the styles from a palette of ANSI color codes keyed by
// primary, success, error, info, emphasis and border.
func Apply(palette map[string]string) {
	color := func(key string) lipgloss.Color { return lipgloss.Color(palette[key]) }

	Theme.App = lipgloss.NewStyle().
		Padding(0, 1)
	Theme.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(color("primary"))
	Theme.Selected = lipgloss.NewStyle().
		Foreground(color("success")).
		Bold(true).
		Underline(true)
	Theme.Unselected = lipgloss.NewStyle().
		Foreground(color("info"))
	Theme.Help = lipgloss.NewStyle().
		Foreground(color("emphasis"))
	Theme.Error = lipgloss.NewStyle().
		Foreground(color("error"))
	Theme.Pane = lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color("border"))
}
