package views

import (
	"strings"

	"datpeek/internal/tui/common"
	"datpeek/internal/tui/components"
	"datpeek/internal/tui/styles"
)

// RenderMainView lays out the tab bar, the focused preview and the status line.
func RenderMainView(m common.ModelReader, width int) string {
	var sb strings.Builder

	sb.WriteString(renderTabBar(m) + "\n")

	tabs := m.Tabs()
	switch {
	case m.Mode() == common.Text:
		sb.WriteString(m.TextView() + "\n")
	case len(tabs) == 0:
		sb.WriteString(renderEmpty() + "\n")
	default:
		sb.WriteString(components.RenderPreview(tabs[m.Current()].Frame, width) + "\n")
	}

	if m.Mode() == common.Prompt {
		sb.WriteString(m.PromptView() + "\n")
	}
	if status := m.StatusView(); status != "" {
		sb.WriteString(status + "\n")
	}
	if msg := m.StatusMsg(); msg != "" {
		sb.WriteString(styles.Theme.Unselected.Render(msg) + "\n")
	}

	if m.ShowHelp() {
		sb.WriteString("\n" + RenderHelp())
	}
	sb.WriteString("\n" + RenderKeyCommands())

	return styles.Theme.App.Render(sb.String())
}

func renderTabBar(m common.ModelReader) string {
	tabs := m.Tabs()
	if len(tabs) == 0 {
		return styles.Theme.Title.Render("datpeek")
	}

	parts := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		title := tab.Title
		if tab.Loading {
			title += " …"
		}
		if i == m.Current() {
			parts = append(parts, styles.Theme.Selected.Render("["+title+"]"))
		} else {
			parts = append(parts, styles.Theme.Unselected.Render(" "+title+" "))
		}
	}
	return strings.Join(parts, " ")
}

func RenderKeyCommands() string {
	return styles.Theme.Help.Render(
		"[←/p] Previous  [→/n] Next  [e] Export  [t] Text  [Tab] Switch  [x] Close  [q] Quit  [?] Help")
}

func RenderHelp() string {
	return styles.Theme.Help.Render(`Navigation:
  ←/p, →/n: Previous or next container in the folder
  Tab: Switch preview

Previews:
  e: Export the decoded image
  t: Show the raw container as text
  x: Close the preview

Commands:
  q, ctrl+c: Exit
  esc: Leave text view or cancel export
  ?: Toggle help
`)
}

func renderEmpty() string {
	return styles.Theme.Unselected.Render("No container open. Run datpeek tui <file.dat>...")
}
