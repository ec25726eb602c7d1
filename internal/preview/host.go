package preview

import (
	"context"
	"time"

	"datpeek/internal/container"
)

// Metadata is what Storage reports about a file.
type Metadata struct {
	Size      int64
	CreatedAt time.Time
}

// Storage is the file access a session needs.
type Storage interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Stat(ctx context.Context, path string) (Metadata, error)
	ListDirectory(ctx context.Context, dir string) ([]string, error)
}

// FileEventKind tells what happened to a watched file.
type FileEventKind int

const (
	FileChanged FileEventKind = iota
	FileDeleted
)

func (k FileEventKind) String() string {
	if k == FileDeleted {
		return "deleted"
	}
	return "changed"
}

// FileEvent reports a change to one file of a watched directory.
type FileEvent struct {
	Path string
	Kind FileEventKind
}

// Subscription delivers the events of one watched directory until closed.
type Subscription interface {
	Events() <-chan FileEvent
	Close() error
}

// Watcher subscribes to file events of a directory.
type Watcher interface {
	Watch(dir string) (Subscription, error)
}

// Dialog asks the user where to save an export. ok is false when the user
// cancelled.
type Dialog interface {
	PromptSaveLocation(ctx context.Context, defaultPath, title string) (path string, ok bool, err error)
}

// Frame is one rendering of a session's resource. Err is set when the
// resource could not be read; the surface shows its error panel then, as it
// does when Image does not decode.
type Frame struct {
	Resource string
	Image    container.Image
	Err      error
}

// Inbox receives messages from a rendering surface.
type Inbox interface {
	Receive(msg Message)
}

// Surface is the host view a session renders into.
type Surface interface {
	// Attach connects the surface to the session it reports to. It is called
	// once, before the first frame.
	Attach(inbox Inbox)
	Post(msg Message)
	Render(frame Frame)
	// ReopenAsText shows the raw resource in the host's text viewer.
	ReopenAsText(path string)
	// Close tears the view down on the session's behalf.
	Close()
}
