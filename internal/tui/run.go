package tui

import (
	"context"

	"datpeek/internal/config"
	"datpeek/internal/log"
	"datpeek/internal/preview"
	"datpeek/internal/storage"
	"datpeek/internal/tui/styles"
	"datpeek/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
)

// Run previews paths in the terminal until the user quits.
func Run(cfg *config.Config, paths []string) error {
	styles.Apply(config.GetTheme(cfg.TUI.Theme))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher preview.Watcher
	if w, err := watch.New(); err != nil {
		log.Warnf("File watching disabled: %v", err)
	} else if err := w.Start(); err != nil {
		log.Warnf("File watching disabled: %v", err)
	} else {
		defer w.Stop()
		watcher = w
	}

	m := New(ctx, storage.NewLocal(), watcher, cfg.PreviewOptions(), paths)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus())
	m.SetSender(p.Send)

	_, err := p.Run()
	return err
}
