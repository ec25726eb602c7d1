//go:build !nogui
// +build !nogui

package gui

import (
	"datpeek/internal/config"
	"datpeek/internal/log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// settingsForm edits a copy of the configuration. Nothing reaches the app
// until it is applied.
type settingsForm struct {
	extension  *widget.Entry
	sorted     *widget.Check
	exportExt  *widget.Entry
	timeFormat *widget.Entry
	theme      *widget.Select
}

func newSettingsForm() *settingsForm {
	return &settingsForm{
		extension:  widget.NewEntry(),
		sorted:     widget.NewCheck("Sort containers by name", nil),
		exportExt:  widget.NewEntry(),
		timeFormat: widget.NewEntry(),
		theme:      widget.NewSelect(config.ListThemes(), nil),
	}
}

func (f *settingsForm) load(cfg *config.Config) {
	f.extension.SetText(cfg.Container.Extension)
	f.sorted.SetChecked(cfg.Navigation.SortSiblings)
	f.exportExt.SetText(cfg.Export.Extension)
	f.timeFormat.SetText(cfg.Export.TimeFormat)
	f.theme.SetSelected(cfg.TUI.Theme)
}

// read returns cfg with the form values applied.
func (f *settingsForm) read(cfg config.Config) *config.Config {
	cfg.Container.Extension = f.extension.Text
	cfg.Navigation.SortSiblings = f.sorted.Checked
	cfg.Export.Extension = f.exportExt.Text
	cfg.Export.TimeFormat = f.timeFormat.Text
	cfg.TUI.Theme = f.theme.Selected
	return &cfg
}

// createSettingsContent builds the settings view for form.
func (a *App) createSettingsContent(form *settingsForm) fyne.CanvasObject {
	containerCard := widget.NewCard("Containers", "", widget.NewForm(
		widget.NewFormItem("Extension", form.extension),
		widget.NewFormItem("Navigation", form.sorted),
	))

	exportCard := widget.NewCard("Export", "", widget.NewForm(
		widget.NewFormItem("Extension", form.exportExt),
		widget.NewFormItem("Time format", form.timeFormat),
	))

	terminalCard := widget.NewCard("Terminal", "", widget.NewForm(
		widget.NewFormItem("Theme", form.theme),
	))

	// --- Import/Export Settings ---
	importButton := widget.NewButton("Import Configuration...", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			defer reader.Close()

			imported, err := parseImportedConfig(reader, reader.URI().Name())
			if err != nil {
				a.ShowError("Import Failed", err)
				return
			}
			form.load(imported)
		}, a.mainWindow)
	})

	exportButton := widget.NewButton("Export Configuration...", func() {
		dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			defer writer.Close()

			format := "yaml"
			if writer.URI().Extension() == ".json" {
				format = "json"
			}
			if err := exportConfig(form.read(*a.cfg), writer, format); err != nil {
				a.ShowError("Export Failed", err)
				return
			}
			a.ShowInfo("Configuration exported successfully")
		}, a.mainWindow)
	})

	saveButton := widget.NewButton("Save Settings", func() {
		if err := a.applySettings(form.read(*a.cfg)); err != nil {
			a.ShowError("Invalid settings", err)
			return
		}
		a.ShowInfo("Settings saved. They apply to previews opened from now on.")
	})

	return container.NewVBox(
		containerCard,
		exportCard,
		terminalCard,
		container.NewHBox(importButton, exportButton),
		saveButton,
	)
}

// showSettings opens the settings window.
func (a *App) showSettings() fyne.Window {
	form := newSettingsForm()
	form.load(a.cfg)

	w := a.fyneApp.NewWindow("Settings")
	w.SetContent(container.NewScroll(a.createSettingsContent(form)))
	w.Resize(fyne.NewSize(420, 480))
	w.Show()
	return w
}

// applySettings validates cfg, makes it current and saves it. New previews
// pick it up; open ones keep their options.
func (a *App) applySettings(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	*a.cfg = *cfg
	a.coord.SetOptions(a.cfg.PreviewOptions())

	if a.configPath == "" {
		return nil
	}
	if err := config.SaveConfig(a.cfg, a.configPath); err != nil {
		return err
	}
	log.LogWithFields(log.F("path", a.configPath)).Info("Saved settings")
	return nil
}
