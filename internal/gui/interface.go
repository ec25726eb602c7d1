//go:build !nogui
// +build !nogui

package gui

import (
	"datpeek/internal/config"
	"datpeek/internal/log"
	"datpeek/internal/storage"
	"datpeek/internal/watch"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run(paths []string) error
	ShowError(title string, err error)
	ShowInfo(message string)
}

// Factory creates GUI instances
type Factory struct {
	config *config.Config
}

// NewFactory creates a new GUI factory
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{config: cfg}
}

// Create returns a new GUI instance backed by the local file system. When
// file watching is unavailable previews simply stop following changes.
func (f *Factory) Create() (Interface, error) {
	watcher, err := watch.New()
	if err != nil {
		log.Warnf("File watching disabled: %v", err)
		return NewApp(f.config, storage.NewLocal(), nil), nil
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}

	app := NewApp(f.config, storage.NewLocal(), watcher)
	app.closers = append(app.closers, watcher.Stop)
	return app, nil
}
