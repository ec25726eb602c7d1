//go:build !nogui
// +build !nogui

package gui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/tiff"

	"datpeek/internal/log"
	"datpeek/internal/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// tabSurface renders one preview session inside a document tab.
type tabSurface struct {
	app  *App
	item *container.TabItem

	image      *canvas.Image
	loading    *widget.ProgressBarInfinite
	errorLabel *widget.Label
	errorPanel *fyne.Container

	session *preview.Session

	mu       sync.Mutex
	inbox    preview.Inbox
	active   bool
	resource string
	format   string
}

func newTabSurface(a *App, title string) *tabSurface {
	s := &tabSurface{app: a}

	s.image = canvas.NewImageFromImage(nil)
	s.image.FillMode = canvas.ImageFillContain
	s.image.SetMinSize(fyne.NewSize(200, 200))

	s.loading = widget.NewProgressBarInfinite()
	s.loading.Hide()

	s.errorLabel = widget.NewLabel("")
	s.errorLabel.Alignment = fyne.TextAlignCenter
	reopen := widget.NewButtonWithIcon("Open as text", theme.FileTextIcon(), func() {
		s.send(preview.CommandMessage(preview.MsgReopenAsText))
	})
	s.errorPanel = container.NewCenter(container.NewVBox(
		widget.NewIcon(theme.BrokenImageIcon()),
		s.errorLabel,
		reopen,
	))
	s.errorPanel.Hide()

	content := container.NewBorder(s.loading, nil, nil, nil, container.NewStack(s.image, s.errorPanel))
	s.item = container.NewTabItemWithIcon(title, theme.FileImageIcon(), content)
	return s
}

func (s *tabSurface) send(msg preview.Message) {
	s.mu.Lock()
	inbox := s.inbox
	s.mu.Unlock()
	if inbox != nil {
		inbox.Receive(msg)
	}
}

func (s *tabSurface) Attach(inbox preview.Inbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = inbox
}

func (s *tabSurface) Post(msg preview.Message) {
	switch msg.Type {
	case preview.MsgLoading:
		s.loading.Show()
	case preview.MsgLoadingSuccess:
		s.loading.Hide()
	case preview.MsgSetActive:
		active, _ := msg.Value.(bool)
		s.mu.Lock()
		s.active = active
		s.mu.Unlock()
	}
}

// Render shows frame. Images the standard decoders cannot read get the error
// panel, which offers the raw bytes instead.
func (s *tabSurface) Render(frame preview.Frame) {
	s.mu.Lock()
	s.resource = frame.Resource
	s.mu.Unlock()

	s.item.Text = filepath.Base(frame.Resource)
	if s.app.tabs != nil {
		s.app.tabs.Refresh()
	}

	if frame.Err != nil {
		s.showError(fmt.Sprintf("Cannot read %s", filepath.Base(frame.Resource)))
		return
	}

	img, format, err := image.Decode(bytes.NewReader(frame.Image.Data))
	if err != nil {
		log.LogWithFields(log.F("path", frame.Resource), log.F("media_type", frame.Image.MediaType()), log.F("error", err)).
			Debug("Decoded container is not a readable image")
		s.showError("The image failed to load")
		return
	}

	s.mu.Lock()
	s.format = format
	s.mu.Unlock()

	s.errorPanel.Hide()
	s.image.Image = img
	s.image.Show()
	s.image.Refresh()

	b := img.Bounds()
	s.send(preview.SizeMessage(b.Dx(), b.Dy()))
}

func (s *tabSurface) showError(text string) {
	s.image.Image = nil
	s.image.Hide()
	s.errorLabel.SetText(text)
	s.errorPanel.Show()
}

func (s *tabSurface) ReopenAsText(path string) {
	if _, err := s.app.showText(path); err != nil {
		s.app.ShowError("Cannot open "+path, err)
	}
}

func (s *tabSurface) Close() {
	s.app.removeTab(s)
}

func (s *tabSurface) isActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *tabSurface) imageFormat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}
