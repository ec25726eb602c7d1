package components

import (
	"strings"

	"datpeek/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusBar shows the status slots of the focused preview, with a spinner
// while it loads.
type StatusBar struct {
	slots   []string
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return &StatusBar{spinner: s}
}

func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

// SetSlots sets the visible slot texts, in display order.
func (s *StatusBar) SetSlots(slots []string) {
	s.slots = slots
}

// Tick starts the spinner animation.
func (s *StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

// Update advances the spinner. It keeps ticking while idle so the next load
// animates right away.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *StatusBar) View() string {
	text := strings.Join(s.slots, " │ ")
	if text == "" && !s.loading {
		return ""
	}

	if s.loading {
		return styles.Theme.Help.Render(s.spinner.View() + " " + text)
	}
	return styles.Theme.Help.Render(text)
}
