//go:build !nogui
// +build !nogui

// Package gui is the desktop host of the previewer. Every opened container
// gets a document tab; the focused tab drives the status bar and the
// navigation buttons.
package gui

import "datpeek/internal/config"

// StartGUI opens paths in the desktop previewer and blocks until its window
// is closed.
func StartGUI(cfg *config.Config, paths []string) error {
	app, err := NewFactory(cfg).Create()
	if err != nil {
		return err
	}
	return app.Run(paths)
}

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return true
}
