package components

import (
	"fmt"
	"path/filepath"
	"strings"

	"datpeek/internal/tui/common"
	"datpeek/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderPreview describes a decoded container inside a bordered pane.
func RenderPreview(frame common.FrameInfo, width int) string {
	var s strings.Builder

	if frame.Resource == "" {
		s.WriteString(styles.Theme.Unselected.Render("Loading..."))
		return pane(width).Render(s.String())
	}

	s.WriteString(styles.Theme.Title.Render(filepath.Base(frame.Resource)) + "\n")
	s.WriteString(styles.Theme.Unselected.Render(filepath.Dir(frame.Resource)) + "\n\n")

	if frame.Err != "" {
		s.WriteString(styles.Theme.Error.Render(frame.Err) + "\n")
		s.WriteString(styles.Theme.Help.Render("[t] Open as text"))
		return pane(width).Render(s.String())
	}

	rows := [][2]string{
		{"Label", fmt.Sprintf("%s (%s)", frame.Codec, frame.MediaType)},
		{"Key", fmt.Sprintf("0x%02X", frame.Key)},
		{"Size", humanize.Bytes(uint64(frame.Bytes))},
		{"Format", frame.Format},
		{"Image", fmt.Sprintf("%dx%d", frame.Width, frame.Height)},
	}
	for _, row := range rows {
		s.WriteString(fmt.Sprintf("%-8s %s\n", row[0], styles.Theme.Selected.Render(row[1])))
	}
	return pane(width).Render(strings.TrimSuffix(s.String(), "\n"))
}

func pane(width int) lipgloss.Style {
	style := styles.Theme.Pane
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style
}
