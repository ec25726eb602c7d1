// Package cli holds the terminal output helpers of the datpeek commands.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	logoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("213")).
			Padding(0, 1)
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintln(w, successStyle.Render("✓ "+message))
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintln(w, errorStyle.Render("✗ "+message))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w, warningStyle.Render("! "+message))
}

// PrintInfo prints an informational message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintln(w, infoStyle.Render("ℹ "+message))
}

// PrintHeader prints a section header
func PrintHeader(w io.Writer, message string) {
	fmt.Fprintln(w, headerStyle.Render(message))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(message)))
}

// DrawBox draws a rounded box around content.
func DrawBox(content string) string {
	return boxStyle.Render(content)
}

// Logo returns the datpeek banner.
func Logo() string {
	logo := `     _       _                  _
  __| | __ _| |_ _ __   ___  ___| | __
 / _` + "`" + ` |/ _` + "`" + ` | __| '_ \ / _ \/ _ \ |/ /
| (_| | (_| | |_| |_) |  __/  __/   <
 \__,_|\__,_|\__| .__/ \___|\___|_|\_\
                |_|`
	return logoStyle.Render(logo)
}
