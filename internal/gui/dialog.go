//go:build !nogui
// +build !nogui

package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"datpeek/internal/log"
	"datpeek/internal/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
)

// saveDialog asks for export locations with the Fyne file save dialog.
type saveDialog struct {
	app *App
}

var _ preview.Dialog = (*saveDialog)(nil)

type saveResult struct {
	path string
	ok   bool
	err  error
}

// PromptSaveLocation shows the dialog and blocks until the user answers or
// ctx ends.
func (d *saveDialog) PromptSaveLocation(ctx context.Context, defaultPath, title string) (string, bool, error) {
	done := make(chan saveResult, 1)

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			done <- saveResult{err: err}
			return
		}
		if writer == nil {
			done <- saveResult{} // User cancelled
			return
		}
		uri := writer.URI()
		// The session writes the file itself
		writer.Close()
		if uri.Scheme() != "file" {
			done <- saveResult{err: fmt.Errorf("unsupported URI scheme: %s", uri.Scheme())}
			return
		}
		done <- saveResult{path: uriPath(uri), ok: true}
	}, d.app.mainWindow)

	fd.SetFileName(filepath.Base(defaultPath))
	if dir, err := fynestorage.ListerForURI(fynestorage.NewFileURI(filepath.Dir(defaultPath))); err == nil {
		fd.SetLocation(dir)
	}
	if ext := filepath.Ext(defaultPath); ext != "" {
		fd.SetFilter(fynestorage.NewExtensionFileFilter([]string{ext}))
	}

	log.LogWithFields(log.F("title", title), log.F("default", defaultPath)).Debug("Asking for export location")
	fd.Show()

	select {
	case r := <-done:
		return r.path, r.ok, r.err
	case <-ctx.Done():
		fd.Hide()
		return "", false, ctx.Err()
	}
}

// uriPath converts a file URI into an OS path.
func uriPath(uri fyne.URI) string {
	path := uri.Path()
	if runtime.GOOS == "windows" {
		// Remove leading slash and convert to Windows path format
		path = strings.TrimPrefix(path, "/")
		path = filepath.FromSlash(path)
	}
	return path
}
