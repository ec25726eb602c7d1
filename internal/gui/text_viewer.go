//go:build !nogui
// +build !nogui

package gui

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// maxTextBytes bounds how much of a container the text viewer dumps.
const maxTextBytes = 64 * 1024

// showText opens a window with a hex dump of the raw file at path.
func (a *App) showText(path string) (fyne.Window, error) {
	data, err := a.storage.ReadFile(a.ctx, path)
	if err != nil {
		return nil, err
	}

	dump := hexDump(data)
	w := a.fyneApp.NewWindow(filepath.Base(path) + " (text)")
	grid := widget.NewTextGridFromString(dump)
	w.SetContent(container.NewScroll(grid))
	w.Resize(fyne.NewSize(720, 520))
	w.Show()
	return w, nil
}

func hexDump(data []byte) string {
	if len(data) <= maxTextBytes {
		return hex.Dump(data)
	}
	return hex.Dump(data[:maxTextBytes]) +
		fmt.Sprintf("... %d more bytes not shown\n", len(data)-maxTextBytes)
}
