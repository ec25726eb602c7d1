package tui

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	_ "golang.org/x/image/tiff"

	"datpeek/internal/preview"
	"datpeek/internal/tui/common"
	"datpeek/internal/tui/messages"

	tea "github.com/charmbracelet/bubbletea"
)

// teaSurface forwards what a session shows in tab id to the program.
type teaSurface struct {
	id      int
	send    func(tea.Msg)
	storage preview.Storage

	mu    sync.Mutex
	inbox preview.Inbox
}

func (s *teaSurface) Attach(inbox preview.Inbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = inbox
}

func (s *teaSurface) Post(msg preview.Message) {
	s.send(messages.PostMsg{TabID: s.id, Message: msg})
}

// Render reads the image header to learn its size; the pixels are never drawn.
func (s *teaSurface) Render(frame preview.Frame) {
	info := common.FrameInfo{
		Resource:  frame.Resource,
		Codec:     frame.Image.Codec.String(),
		MediaType: frame.Image.MediaType(),
		Key:       frame.Image.Key,
		Bytes:     len(frame.Image.Data),
	}

	if frame.Err != nil {
		info.Err = frame.Err.Error()
	} else if cfg, format, err := image.DecodeConfig(bytes.NewReader(frame.Image.Data)); err != nil {
		info.Err = "The image failed to load"
	} else {
		info.Format = format
		info.Width, info.Height = cfg.Width, cfg.Height

		s.mu.Lock()
		inbox := s.inbox
		s.mu.Unlock()
		if inbox != nil {
			inbox.Receive(preview.SizeMessage(cfg.Width, cfg.Height))
		}
	}

	s.send(messages.FrameMsg{TabID: s.id, Frame: info})
}

func (s *teaSurface) ReopenAsText(path string) {
	data, err := s.storage.ReadFile(context.Background(), path)
	s.send(messages.TextMsg{TabID: s.id, Path: path, Data: data, Err: err})
}

func (s *teaSurface) Close() {
	s.send(messages.CloseMsg{TabID: s.id})
}

// promptDialog asks for export locations through the program's prompt line.
type promptDialog struct {
	send func(tea.Msg)
}

func (d *promptDialog) PromptSaveLocation(ctx context.Context, defaultPath, title string) (string, bool, error) {
	reply := make(chan messages.PromptReply, 1)
	d.send(messages.PromptMsg{Title: title, DefaultPath: defaultPath, Reply: reply})

	select {
	case r := <-reply:
		return r.Path, r.OK, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}
