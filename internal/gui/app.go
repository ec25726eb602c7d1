//go:build !nogui
// +build !nogui

package gui

import (
	"context"
	"image/color"
	"path/filepath"
	"sync"

	"datpeek/internal/config"
	"datpeek/internal/log"
	"datpeek/internal/preview"
	"datpeek/internal/status"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	configPath string
	storage    preview.Storage
	coord      *preview.Coordinator
	ctx        context.Context
	cancel     context.CancelFunc

	tabs *container.DocTabs

	// Status bar labels: size, dimensions, creation time and file name
	statusLabels [4]*widget.Label

	// Buttons that only make sense with a focused preview
	previewButtons []*widget.Button

	mu    sync.Mutex
	views map[*container.TabItem]*tabSurface

	// Run on exit, after every session is disposed
	closers []func()

	accentColor color.NRGBA
}

// NewApp creates a new GUI application
func NewApp(cfg *config.Config, storage preview.Storage, watcher preview.Watcher) *App {
	// Create app with a unique ID for preferences storage
	return newApp(app.NewWithID("io.github.datpeek"), cfg, storage, watcher)
}

func newApp(fyneApp fyne.App, cfg *config.Config, storage preview.Storage, watcher preview.Watcher) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:     fyneApp,
		cfg:         cfg,
		storage:     storage,
		ctx:         ctx,
		cancel:      cancel,
		views:       make(map[*container.TabItem]*tabSurface),
		accentColor: color.NRGBA{R: 255, G: 165, B: 0, A: 255},
	}
	if path, err := config.DefaultPath(); err == nil {
		a.configPath = path
	}
	for i := range a.statusLabels {
		a.statusLabels[i] = widget.NewLabel("")
		a.statusLabels[i].Hide()
	}

	a.coord = preview.NewCoordinator(preview.Deps{
		Storage:         storage,
		Watcher:         watcher,
		Dialog:          &saveDialog{app: a},
		Display:         status.NewDisplay(a.statusLabels[0], a.statusLabels[1], a.statusLabels[2], a.statusLabels[3]),
		Options:         cfg.PreviewOptions(),
		OnActiveChanged: a.setPreviewButtonsEnabled,
	})

	a.mainWindow = a.fyneApp.NewWindow("datpeek")
	a.setupMainWindow()

	lifecycle := a.fyneApp.Lifecycle()
	lifecycle.SetOnExitedForeground(func() { a.focusSelected(false) })
	lifecycle.SetOnEnteredForeground(func() { a.focusSelected(true) })

	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run opens paths and starts the GUI application. It returns once the main
// window is closed.
func (a *App) Run(paths []string) error {
	for _, path := range paths {
		if _, err := a.OpenFile(path); err != nil {
			a.ShowError("Cannot open "+path, err)
		}
	}

	a.mainWindow.ShowAndRun()
	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	a.coord.Close()
	a.cancel()
	for _, closer := range a.closers {
		closer()
	}
}

// setupMainWindow sets up the main window content
func (a *App) setupMainWindow() {
	a.mainWindow.Resize(fyne.NewSize(float32(a.cfg.GUI.Width), float32(a.cfg.GUI.Height)))

	openButton := widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), a.showOpenDialog)
	prevButton := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.coord.Previous)
	nextButton := widget.NewButtonWithIcon("", theme.NavigateNextIcon(), a.coord.Next)
	exportButton := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), a.coord.Export)
	textButton := widget.NewButtonWithIcon("Open as text", theme.FileTextIcon(), a.reopenActiveAsText)
	a.previewButtons = []*widget.Button{prevButton, nextButton, exportButton, textButton}
	a.setPreviewButtonsEnabled(false)

	settingsButton := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() { a.showSettings() })
	helpButton := widget.NewButtonWithIcon("", theme.HelpIcon(), func() {
		dialog.ShowInformation("About datpeek",
			"datpeek previews obfuscated image-cache containers.\n"+
				"Use the arrows to step through the containers of a folder\n"+
				"and Export to save the decoded image.",
			a.mainWindow)
	})

	toolbar := container.NewHBox(
		openButton,
		widget.NewSeparator(),
		prevButton,
		nextButton,
		widget.NewSeparator(),
		exportButton,
		textButton,
		layout.NewSpacer(),
		settingsButton,
		helpButton,
	)

	a.tabs = container.NewDocTabs()
	a.tabs.OnSelected = func(item *container.TabItem) { a.focusView(item, true) }
	a.tabs.OnUnselected = func(item *container.TabItem) { a.focusView(item, false) }
	a.tabs.OnClosed = a.onTabClosed

	content := container.NewBorder(
		container.NewVBox(toolbar, canvas.NewLine(a.accentColor)),
		a.createStatusBar(),
		nil,
		nil,
		a.tabs,
	)
	a.mainWindow.SetContent(content)

	a.mainWindow.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft:
			a.coord.Previous()
		case fyne.KeyRight:
			a.coord.Next()
		}
	})
}

// createStatusBar lays the status slots out along the bottom of the window
func (a *App) createStatusBar() fyne.CanvasObject {
	return container.NewHBox(
		a.statusLabels[3],
		layout.NewSpacer(),
		a.statusLabels[2],
		a.statusLabels[1],
		a.statusLabels[0],
	)
}

// OpenFile opens a container in a new tab and focuses it.
func (a *App) OpenFile(path string) (*preview.Session, error) {
	view := newTabSurface(a, filepath.Base(path))
	session, err := a.coord.Open(a.ctx, path, view)
	if err != nil {
		return nil, err
	}
	view.session = session

	a.mu.Lock()
	a.views[view.item] = view
	a.mu.Unlock()

	a.tabs.Append(view.item)
	a.tabs.Select(view.item)
	return session, nil
}

func (a *App) showOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.ShowError("Cannot open file", err)
			return
		}
		if reader == nil {
			return // User cancelled
		}
		path := uriPath(reader.URI())
		reader.Close()
		if _, err := a.OpenFile(path); err != nil {
			a.ShowError("Cannot open "+path, err)
		}
	}, a.mainWindow)
	d.SetFilter(fynestorage.NewExtensionFileFilter([]string{a.cfg.Container.Extension}))
	d.Show()
}

func (a *App) reopenActiveAsText() {
	if s := a.coord.Active(); s != nil {
		s.Receive(preview.CommandMessage(preview.MsgReopenAsText))
	}
}

func (a *App) viewFor(item *container.TabItem) *tabSurface {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.views[item]
}

func (a *App) focusView(item *container.TabItem, focused bool) {
	if view := a.viewFor(item); view != nil && view.session != nil {
		a.coord.FocusChanged(view.session, focused)
	}
}

func (a *App) focusSelected(focused bool) {
	if item := a.tabs.Selected(); item != nil {
		a.focusView(item, focused)
	}
}

func (a *App) onTabClosed(item *container.TabItem) {
	a.mu.Lock()
	view := a.views[item]
	delete(a.views, item)
	a.mu.Unlock()

	if view != nil && view.session != nil {
		a.coord.Dispose(view.session)
	}
}

// removeTab drops the tab of a preview that ended on its own.
func (a *App) removeTab(view *tabSurface) {
	a.mu.Lock()
	_, open := a.views[view.item]
	delete(a.views, view.item)
	a.mu.Unlock()

	if open {
		a.tabs.Remove(view.item)
	}
}

func (a *App) setPreviewButtonsEnabled(enabled bool) {
	for _, b := range a.previewButtons {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

// ShowError displays an error dialog
func (a *App) ShowError(title string, err error) {
	if err == nil {
		return
	}
	log.LogWithError(err).Error(title)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Information", message, a.mainWindow)
}
