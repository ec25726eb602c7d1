package preview

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"datpeek/internal/errors"
	"datpeek/internal/status"

	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fakeStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	meta      map[string]Metadata
	dirs      map[string][]string
	written   map[string][]byte
	statGate  chan struct{}
	listCalls int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		files:   make(map[string][]byte),
		meta:    make(map[string]Metadata),
		dirs:    make(map[string][]string),
		written: make(map[string][]byte),
	}
}

func (f *fakeStorage) put(path string, data []byte, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	f.meta[path] = Metadata{Size: int64(len(data)), CreatedAt: createdAt}
}

func (f *fakeStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, errors.FromOS(fs.ErrNotExist, path, "cannot read file")
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeStorage) WriteFile(ctx context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStorage) Stat(ctx context.Context, path string) (Metadata, error) {
	f.mu.Lock()
	gate := f.statGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	md, ok := f.meta[path]
	if !ok {
		return Metadata{}, errors.FromOS(fs.ErrNotExist, path, "cannot stat file")
	}
	return md, nil
}

func (f *fakeStorage) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]string(nil), f.dirs[dir]...), nil
}

func (f *fakeStorage) writtenTo(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.written[path]
	return data, ok
}

type fakeSurface struct {
	mu       sync.Mutex
	inbox    Inbox
	posts    []Message
	frames   []Frame
	reopened []string
	closed   int
}

func (f *fakeSurface) Attach(inbox Inbox) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = inbox
}

func (f *fakeSurface) Post(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, msg)
}

// Render reports a fixed size back for every readable frame, as a real
// surface does once the image loaded.
func (f *fakeSurface) Render(frame Frame) {
	f.mu.Lock()
	f.frames = append(f.frames, frame)
	inbox := f.inbox
	f.mu.Unlock()

	if frame.Err == nil && inbox != nil {
		inbox.Receive(SizeMessage(640, 480))
	}
}

func (f *fakeSurface) ReopenAsText(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reopened = append(f.reopened, path)
}

func (f *fakeSurface) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeSurface) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeSurface) lastFrame() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return Frame{}
	}
	return f.frames[len(f.frames)-1]
}

func (f *fakeSurface) postTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.posts))
	for _, p := range f.posts {
		types = append(types, p.Type)
	}
	return types
}

type dialogCall struct {
	defaultPath string
	title       string
}

type fakeDialog struct {
	mu    sync.Mutex
	path  string
	ok    bool
	calls []dialogCall
}

func (f *fakeDialog) PromptSaveLocation(ctx context.Context, defaultPath, title string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dialogCall{defaultPath: defaultPath, title: title})
	return f.path, f.ok, nil
}

func (f *fakeDialog) lastCall() dialogCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return dialogCall{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeSubscription struct {
	events chan FileEvent
	mu     sync.Mutex
	closed bool
}

func (f *fakeSubscription) Events() <-chan FileEvent { return f.events }

func (f *fakeSubscription) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSubscription) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeWatcher struct {
	mu   sync.Mutex
	subs map[string][]*fakeSubscription
}

func (f *fakeWatcher) Watch(dir string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = make(map[string][]*fakeSubscription)
	}
	sub := &fakeSubscription{events: make(chan FileEvent, 16)}
	f.subs[dir] = append(f.subs[dir], sub)
	return sub, nil
}

func (f *fakeWatcher) emit(dir string, ev FileEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs[dir] {
		sub.events <- ev
	}
}

func (f *fakeWatcher) sub(dir string, n int) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[dir][n]
}

type fakeItem struct {
	mu      sync.Mutex
	text    string
	visible bool
}

func (f *fakeItem) SetText(text string) { f.mu.Lock(); f.text = text; f.mu.Unlock() }
func (f *fakeItem) Show()               { f.mu.Lock(); f.visible = true; f.mu.Unlock() }
func (f *fakeItem) Hide()               { f.mu.Lock(); f.visible = false; f.mu.Unlock() }

func (f *fakeItem) state() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.visible
}

type fixture struct {
	storage *fakeStorage
	watcher *fakeWatcher
	dialog  *fakeDialog
	items   [4]*fakeItem
	coord   *Coordinator

	mu     sync.Mutex
	active []bool
}

var cacheDir = filepath.FromSlash("/cache")

func cachePath(name string) string {
	return filepath.Join(cacheDir, name)
}

var created = time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

// newFixture serves a cache directory holding a.dat, b.dat and c.dat, each a
// masked jpeg header of a different length, next to an unrelated notes.txt.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		storage: newFakeStorage(),
		watcher: &fakeWatcher{},
		dialog:  &fakeDialog{},
	}
	for i := range f.items {
		f.items[i] = &fakeItem{}
	}
	for n, name := range []string{"a.dat", "b.dat", "c.dat"} {
		f.storage.put(cachePath(name), maskedJPEG(1024*(n+1)), created.Add(time.Duration(n)*time.Hour))
	}
	f.storage.put(cachePath("notes.txt"), []byte("notes"), created)
	f.storage.dirs[cacheDir] = []string{"a.dat", "b.dat", "notes.txt", "c.dat"}

	display := status.NewDisplay(f.items[0], f.items[1], f.items[2], f.items[3])
	f.coord = NewCoordinator(Deps{
		Storage: f.storage,
		Watcher: f.watcher,
		Dialog:  f.dialog,
		Display: display,
		Options: DefaultOptions(),
		OnActiveChanged: func(active bool) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.active = append(f.active, active)
		},
	})
	t.Cleanup(f.coord.Close)
	return f
}

func (f *fixture) open(t *testing.T, name string) (*Session, *fakeSurface) {
	t.Helper()
	surface := &fakeSurface{}
	s, err := f.coord.Open(context.Background(), cachePath(name), surface)
	require.NoError(t, err)
	return s, surface
}

func (f *fixture) activeChanges() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.active...)
}

// slotText returns the text of the size, dimensions, created-at and file name
// slots, empty for hidden ones.
func (f *fixture) slotText(i int) string {
	text, visible := f.items[i].state()
	if !visible {
		return ""
	}
	return text
}

func (f *fixture) anyVisible() bool {
	for _, item := range f.items {
		if _, visible := item.state(); visible {
			return true
		}
	}
	return false
}

// maskedJPEG is size bytes starting with the jpeg marker, masked with 0x5A.
func maskedJPEG(size int) []byte {
	plain := make([]byte, size)
	plain[0], plain[1] = 0xFF, 0xD8
	for i := 2; i < size; i++ {
		plain[i] = byte(i)
	}
	out := make([]byte, size)
	for i, b := range plain {
		out[i] = b ^ 0x5A
	}
	return out
}

func plainJPEG(size int) []byte {
	masked := maskedJPEG(size)
	for i := range masked {
		masked[i] ^= 0x5A
	}
	return masked
}

func flush(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, s.flush(ctx))
}
