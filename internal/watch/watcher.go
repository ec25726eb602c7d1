package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"datpeek/internal/errors"
	"datpeek/internal/log"
	"datpeek/internal/preview"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors directories with fsnotify and fans their file events out
// to the subscriptions of each directory.
type Watcher struct {
	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Channel to signal stop
	stopChan chan struct{}

	// Guards subs and running
	mutex sync.RWMutex

	// Subscriptions by watched directory
	subs map[string]map[*subscription]struct{}

	// Whether the watcher is running
	running bool
}

var _ preview.Watcher = (*Watcher)(nil)

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		stopChan:  make(chan struct{}),
		subs:      make(map[string]map[*subscription]struct{}),
	}, nil
}

// Watch subscribes to the file events of dir. The directory is handed to
// fsnotify with its first subscription and released with its last.
func (w *Watcher) Watch(dir string) (preview.Subscription, error) {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.FromOS(err, dir, "error accessing directory")
	}
	if !info.IsDir() {
		return nil, errors.NewFileError(fmt.Sprintf("%s is not a directory", dir), dir, errors.InvalidPath, nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, watched := w.subs[dir]; !watched {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, errors.NewFileError("failed to add directory to watcher", dir, errors.FileOperationFailed, err)
		}
		w.subs[dir] = make(map[*subscription]struct{})
		log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	}

	sub := &subscription{
		watcher: w,
		dir:     dir,
		events:  make(chan preview.FileEvent, 16),
	}
	w.subs[dir][sub] = struct{}{}
	return sub, nil
}

// Start begins the file watching process using fsnotify
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	stop := w.stopChan
	w.mutex.Unlock()

	go func() {
		log.Debugf("Watcher event loop started.")

		for {
			select {
			case event, ok := <-w.fsWatcher.Events:
				if !ok {
					log.Debugf("fsWatcher.Events channel closed")
					return
				}
				w.dispatch(event)

			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					log.Debugf("fsWatcher.Errors channel closed")
					return
				}
				log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

			case <-stop:
				log.Debugf("Watcher event loop received stop signal.")
				return
			}
		}
	}()

	log.Info("Watcher started.")
	return nil
}

// Stop halts the file watching process and ends every subscription.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}

	close(w.stopChan)

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}

	w.running = false

	for dir, subs := range w.subs {
		for sub := range subs {
			sub.closeLocked()
		}
		delete(w.subs, dir)
	}

	log.Info("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, 0, len(w.subs))
	for dir := range w.subs {
		dirs = append(dirs, dir)
	}
	return dirs
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	var kind preview.FileEventKind
	switch {
	case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
		kind = preview.FileDeleted
	case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
		kind = preview.FileChanged
	default:
		return
	}

	path := filepath.Clean(event.Name)
	ev := preview.FileEvent{Path: path, Kind: kind}

	w.mutex.RLock()
	defer w.mutex.RUnlock()
	for sub := range w.subs[filepath.Dir(path)] {
		// Send non-blockingly so a stalled subscriber cannot hold up the others
		select {
		case sub.events <- ev:
		default:
			log.LogWithFields(log.F("file", path)).Warn("Event channel is full, dropped event")
		}
	}
}

func (w *Watcher) unsubscribe(sub *subscription) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	subs, ok := w.subs[sub.dir]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	sub.closeLocked()

	if len(subs) == 0 {
		delete(w.subs, sub.dir)
		if err := w.fsWatcher.Remove(sub.dir); err != nil {
			log.LogWithFields(log.F("directory", sub.dir), log.F("error", err)).Warn("Error removing directory from watcher")
		} else {
			log.LogWithFields(log.F("directory", sub.dir)).Info("Stopped watching directory")
		}
	}
}

// subscription delivers the events of one directory. Its channel is closed
// when the subscription or the watcher is closed.
type subscription struct {
	watcher *Watcher
	dir     string
	events  chan preview.FileEvent
	closed  bool
}

func (s *subscription) Events() <-chan preview.FileEvent {
	return s.events
}

func (s *subscription) Close() error {
	s.watcher.unsubscribe(s)
	return nil
}

// closeLocked must be called with the watcher mutex held.
func (s *subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
