// Package preview runs the image previews of obfuscated cache containers.
//
// A Session owns one open preview. Everything that happens to it, surface
// messages, focus changes, file events and navigation, is queued in its
// mailbox and handled in order by a single goroutine. Handlers that block on
// storage or on the user re-check for disposal once they resume, and a
// disposed session never touches the status display again.
package preview

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"datpeek/internal/container"
	"datpeek/internal/errors"
	"datpeek/internal/log"
	"datpeek/internal/siblings"
	"datpeek/internal/status"
)

// State is the lifecycle state of a session.
type State int

const (
	Disposed State = iota
	Visible
	Active
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Active:
		return "active"
	default:
		return "disposed"
	}
}

// Options tune how sessions behave.
type Options struct {
	// Extension is the container extension siblings are matched against when
	// the resource itself has none.
	Extension string
	// SortSiblings orders sibling navigation by name instead of listing order.
	SortSiblings bool
	// ExportExtension is appended to the default export file name.
	ExportExtension string
	// TimeFormat renders creation times in the status display and export names.
	TimeFormat string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Extension:       ".dat",
		ExportExtension: ".png",
		TimeFormat:      "2006-01-02 15:04:05",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Extension == "" {
		o.Extension = def.Extension
	}
	if o.ExportExtension == "" {
		o.ExportExtension = def.ExportExtension
	}
	if o.TimeFormat == "" {
		o.TimeFormat = def.TimeFormat
	}
	return o
}

// changeSettle is how long a changed file must stay quiet before it is
// rendered again.
const changeSettle = 50 * time.Millisecond

type event interface{}

type messageEvent struct{ msg Message }

type focusEvent struct{ focused bool }

type fileEvent struct{ ev FileEvent }

type navigateEvent struct{ delta int }

type metricsEvent struct {
	resource string
	md       Metadata
	err      error
}

type openEvent struct{}

type syncEvent struct{ done chan struct{} }

// Session is one open preview.
type Session struct {
	id      string
	storage Storage
	dialog  Dialog
	display *status.Display
	surface Surface
	opts    Options
	index   *siblings.Index
	logger  *log.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	mb          *mailbox
	done        chan struct{}
	disposeOnce sync.Once
	sub         Subscription
	onDispose   func(*Session)

	mu         sync.Mutex
	state      State
	focused    bool
	resource   string
	root       string
	metrics    status.Metrics
	createdAt  time.Time
	saveTarget string
}

type sessionDeps struct {
	storage Storage
	dialog  Dialog
	display *status.Display
	surface Surface
	opts    Options
}

func newSession(ctx context.Context, resource string, deps sessionDeps) (*Session, error) {
	if resource == "" {
		return nil, errors.NewFileError("empty resource path", resource, errors.InvalidPath, errors.ErrInvalidPath)
	}
	abs, err := filepath.Abs(resource)
	if err != nil {
		return nil, errors.NewFileError("cannot resolve resource path", resource, errors.InvalidPath, err)
	}

	opts := deps.opts.withDefaults()
	ext := filepath.Ext(abs)
	if ext == "" {
		ext = opts.Extension
	}
	root := filepath.Dir(abs)
	index, err := siblings.New(root, ext, deps.storage, siblings.Sorted(opts.SortSiblings))
	if err != nil {
		return nil, errors.NewFileError("cannot index sibling containers", root, errors.InvalidPath, err)
	}

	id := uuid.NewString()
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:       id,
		storage:  deps.storage,
		dialog:   deps.dialog,
		display:  deps.display,
		surface:  deps.surface,
		opts:     opts,
		index:    index,
		logger:   log.LogWithFields(log.F("session", id)),
		ctx:      sctx,
		cancel:   cancel,
		mb:       newMailbox(),
		done:     make(chan struct{}),
		state:    Visible,
		focused:  true,
		resource: abs,
		root:     root,
		metrics:  status.Metrics{FileName: abs},
	}
	return s, nil
}

// start subscribes to the resource directory and runs the first render.
func (s *Session) start(watcher Watcher) {
	if watcher != nil {
		sub, err := watcher.Watch(s.root)
		if err != nil {
			log.LogWithError(errors.NewSessionError("cannot watch resource directory", s.id, errors.WatchFailed, err)).
				Warn("Preview will not follow file changes")
		} else {
			s.mu.Lock()
			disposed := s.state == Disposed
			if !disposed {
				s.sub = sub
			}
			s.mu.Unlock()
			if disposed {
				sub.Close()
				return
			}
			go s.forward(sub)
		}
	}

	go s.run()
	s.mb.push(openEvent{})
}

// ID identifies the session towards the status display.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resource returns the file currently previewed.
func (s *Session) Resource() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resource
}

// Root returns the directory the session navigates in.
func (s *Session) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Metrics returns the last known metrics of the current resource.
func (s *Session) Metrics() status.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// SaveTarget returns the last export location, empty before the first export.
func (s *Session) SaveTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveTarget
}

// Done is closed once the session is disposed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Receive queues a message from the surface.
func (s *Session) Receive(msg Message) {
	s.mb.push(messageEvent{msg: msg})
}

// SetFocus queues a focus change reported by the host.
func (s *Session) SetFocus(focused bool) {
	s.mb.push(focusEvent{focused: focused})
}

// RenderNext moves to the next sibling container.
func (s *Session) RenderNext() {
	s.mb.push(navigateEvent{delta: 1})
}

// RenderPrevious moves to the previous sibling container.
func (s *Session) RenderPrevious() {
	s.mb.push(navigateEvent{delta: -1})
}

// Export asks for a location and saves the decoded image there.
func (s *Session) Export() {
	s.mb.push(messageEvent{msg: CommandMessage(MsgExport)})
}

// Dispose tears the session down. It is safe to call from any goroutine and
// more than once.
func (s *Session) Dispose() {
	s.disposeOnce.Do(func() {
		s.mu.Lock()
		wasActive := s.state == Active
		s.state = Disposed
		if wasActive {
			s.display.Hide(s.id)
		}
		sub := s.sub
		s.mu.Unlock()

		s.cancel()
		close(s.done)
		if sub != nil {
			if err := sub.Close(); err != nil {
				s.logger.Warnf("Error closing file subscription: %v", err)
			}
		}
		if s.onDispose != nil {
			s.onDispose(s)
		}
		s.logger.Debug("Session disposed")
	})
}

// flush waits until every event queued so far has been handled.
func (s *Session) flush(ctx context.Context) error {
	done := make(chan struct{})
	s.mb.push(syncEvent{done: done})
	select {
	case <-done:
		return nil
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) disposed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) current() (resource, root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resource, s.root
}

// forward queues the file events of sub. Change events are held until the
// directory has been quiet for changeSettle, and each changed path is queued
// once, so a save that creates and then writes a file renders once.
func (s *Session) forward(sub Subscription) {
	var (
		changed []FileEvent
		settled <-chan time.Time
	)
	release := func() {
		for _, ev := range changed {
			s.mb.push(fileEvent{ev: ev})
		}
		changed = changed[:0]
		settled = nil
	}

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				release()
				return
			}
			if ev.Kind != FileChanged {
				release()
				s.mb.push(fileEvent{ev: ev})
				continue
			}
			if !hasEvent(changed, ev) {
				changed = append(changed, ev)
			}
			settled = time.After(changeSettle)
		case <-settled:
			release()
		case <-s.done:
			return
		}
	}
}

func hasEvent(events []FileEvent, ev FileEvent) bool {
	for _, e := range events {
		if e == ev {
			return true
		}
	}
	return false
}

func (s *Session) run() {
	for {
		select {
		case <-s.mb.signal:
			for _, ev := range s.mb.drain() {
				if se, ok := ev.(syncEvent); ok {
					close(se.done)
					continue
				}
				if s.disposed() {
					continue
				}
				s.handle(ev)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Session) handle(ev event) {
	switch ev := ev.(type) {
	case openEvent:
		s.render()
		s.update()
		s.postActive()
	case messageEvent:
		s.handleMessage(ev.msg)
	case focusEvent:
		s.mu.Lock()
		s.focused = ev.focused
		s.mu.Unlock()
		s.update()
		s.postActive()
	case navigateEvent:
		s.navigate(ev.delta)
	case fileEvent:
		s.handleFileEvent(ev.ev)
	case metricsEvent:
		s.applyMetrics(ev)
	}
}

func (s *Session) handleMessage(msg Message) {
	switch msg.Type {
	case MsgSize:
		value := msg.stringValue()
		if _, _, err := ParseDimensions(value); err != nil {
			s.logger.Warnf("Ignoring size message: %v", err)
			return
		}
		s.mu.Lock()
		s.metrics.Dimensions = value
		s.mu.Unlock()
		s.update()
	case MsgReopenAsText:
		resource, _ := s.current()
		s.surface.ReopenAsText(resource)
	case MsgNext:
		s.navigate(1)
	case MsgPrevious:
		s.navigate(-1)
	case MsgExport:
		s.export()
	default:
		s.logger.Debugf("Ignoring surface message %q", msg.Type)
	}
}

func (s *Session) handleFileEvent(ev FileEvent) {
	resource, _ := s.current()
	if filepath.Clean(ev.Path) != resource {
		return
	}

	switch ev.Kind {
	case FileChanged:
		s.logger.Debugf("Resource changed: %s", resource)
		s.render()
	case FileDeleted:
		log.LogWithFields(log.F("session", s.id), log.F("path", resource)).Info("Resource deleted, closing preview")
		s.surface.Close()
		s.Dispose()
	}
}

func (s *Session) postActive() {
	s.mu.Lock()
	focused := s.focused
	s.mu.Unlock()
	s.surface.Post(Message{Type: MsgSetActive, Value: focused})
}

// render reads, decodes and shows the current resource.
func (s *Session) render() {
	resource, _ := s.current()
	s.surface.Post(Message{Type: MsgLoading, Value: struct{}{}})

	data, err := s.storage.ReadFile(s.ctx, resource)
	if s.disposed() {
		return
	}

	frame := Frame{Resource: resource}
	if err != nil {
		log.LogWithError(err).Warn("Cannot read container")
		frame.Err = err
	} else {
		frame.Image = container.Decode(data)
	}
	s.surface.Render(frame)
	s.surface.Post(Message{Type: MsgLoadingSuccess, Value: struct{}{}})
	s.refreshMetrics()
}

// update refreshes the metrics and, when focused, pushes them to the display.
func (s *Session) update() {
	s.refreshMetrics()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed {
		return
	}
	s.metrics.FileName = s.resource
	if s.focused {
		s.state = Active
		s.display.Show(s.id, s.metrics)
	} else {
		s.state = Visible
	}
}

// refreshMetrics fetches the resource metadata in the background. The result
// comes back through the mailbox.
func (s *Session) refreshMetrics() {
	resource, _ := s.current()
	go func() {
		md, err := s.storage.Stat(s.ctx, resource)
		s.mb.push(metricsEvent{resource: resource, md: md, err: err})
	}()
}

func (s *Session) applyMetrics(ev metricsEvent) {
	if ev.err != nil {
		if !s.disposed() {
			log.LogWithError(ev.err).Debug("Cannot stat resource")
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed || ev.resource != s.resource {
		return
	}
	s.metrics.ByteSize = ev.md.Size
	s.createdAt = ev.md.CreatedAt
	s.metrics.CreatedAt = s.formatTime(ev.md.CreatedAt)
	if s.state == Active {
		s.display.Show(s.id, s.metrics)
	}
}

func (s *Session) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(s.opts.TimeFormat)
}

// navigate moves delta positions through the sibling containers. Nothing
// happens at either end of the listing.
func (s *Session) navigate(delta int) {
	listing, err := s.index.List(s.ctx)
	if s.disposed() {
		return
	}
	if err != nil {
		log.LogWithError(err).Warn("Cannot list sibling containers")
		return
	}

	resource, _ := s.current()
	next, ok := siblings.Step(resource, listing, delta)
	if !ok {
		s.logger.Debugf("No sibling at offset %d of %s", delta, resource)
		return
	}

	s.mu.Lock()
	if s.state == Disposed {
		s.mu.Unlock()
		return
	}
	s.state = Active
	s.resource = next
	s.metrics = status.Metrics{FileName: next}
	s.createdAt = time.Time{}
	s.mu.Unlock()

	s.render()
}
