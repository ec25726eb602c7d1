package preview

import (
	"context"
	"sync"

	"datpeek/internal/log"
	"datpeek/internal/status"
)

// Deps are the host services shared by every session of a coordinator.
type Deps struct {
	Storage Storage
	Watcher Watcher
	Dialog  Dialog
	Display *status.Display
	Options Options

	// OnActiveChanged is told whether some session now has focus. Hosts use
	// it to enable their navigation commands.
	OnActiveChanged func(active bool)
}

// Coordinator tracks the live sessions and which one has focus.
type Coordinator struct {
	deps Deps

	mu       sync.Mutex
	sessions map[*Session]struct{}
	order    []*Session
	active   *Session
}

// NewCoordinator creates a coordinator over deps.
func NewCoordinator(deps Deps) *Coordinator {
	if deps.Display == nil {
		deps.Display = status.NewDisplay(status.Discard, status.Discard, status.Discard, status.Discard)
	}
	return &Coordinator{
		deps:     deps,
		sessions: make(map[*Session]struct{}),
	}
}

// Open starts a session previewing path in surface. The new session is
// focused and becomes the active one; the previously active session loses
// focus. ctx bounds the session lifetime.
func (c *Coordinator) Open(ctx context.Context, path string, surface Surface) (*Session, error) {
	c.mu.Lock()
	opts := c.deps.Options
	c.mu.Unlock()

	s, err := newSession(ctx, path, sessionDeps{
		storage: c.deps.Storage,
		dialog:  c.deps.Dialog,
		display: c.deps.Display,
		surface: surface,
		opts:    opts,
	})
	if err != nil {
		return nil, err
	}
	s.onDispose = c.forget

	c.mu.Lock()
	c.sessions[s] = struct{}{}
	c.order = append(c.order, s)
	prev := c.active
	c.active = s
	c.mu.Unlock()

	if prev == nil {
		c.notify(true)
	} else {
		prev.SetFocus(false)
	}

	log.LogWithFields(log.F("session", s.ID()), log.F("path", s.Resource())).Info("Opened preview")
	surface.Attach(s)
	s.start(c.deps.Watcher)
	return s, nil
}

// SetOptions changes the options of sessions opened from now on. Open
// sessions keep theirs.
func (c *Coordinator) SetOptions(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps.Options = opts
}

// FocusChanged records a focus change of s reported by the host.
func (c *Coordinator) FocusChanged(s *Session, focused bool) {
	c.mu.Lock()
	if _, live := c.sessions[s]; !live {
		c.mu.Unlock()
		return
	}
	before := c.active != nil
	if focused {
		c.active = s
	} else if c.active == s {
		c.active = nil
	}
	after := c.active != nil
	c.mu.Unlock()

	if before != after {
		c.notify(after)
	}
	s.SetFocus(focused)
}

// Dispose disposes s.
func (c *Coordinator) Dispose(s *Session) {
	s.Dispose()
}

// Active returns the focused session, nil when none has focus.
func (c *Coordinator) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Sessions returns the live sessions in the order they were opened.
func (c *Coordinator) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Session, len(c.order))
	copy(out, c.order)
	return out
}

// Next moves the active session to its next sibling.
func (c *Coordinator) Next() {
	if s := c.Active(); s != nil {
		s.RenderNext()
	}
}

// Previous moves the active session to its previous sibling.
func (c *Coordinator) Previous() {
	if s := c.Active(); s != nil {
		s.RenderPrevious()
	}
}

// Export exports the image of the active session.
func (c *Coordinator) Export() {
	if s := c.Active(); s != nil {
		s.Export()
	}
}

// Close disposes every live session.
func (c *Coordinator) Close() {
	for _, s := range c.Sessions() {
		s.Dispose()
	}
}

func (c *Coordinator) forget(s *Session) {
	c.mu.Lock()
	if _, live := c.sessions[s]; !live {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, s)
	for i, o := range c.order {
		if o == s {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	cleared := c.active == s
	if cleared {
		c.active = nil
	}
	c.mu.Unlock()

	if cleared {
		c.notify(false)
	}
}

func (c *Coordinator) notify(active bool) {
	if c.deps.OnActiveChanged != nil {
		c.deps.OnActiveChanged(active)
	}
}
