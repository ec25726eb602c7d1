package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"datpeek/internal/preview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New()
	require.NoError(t, err, "New watcher creation failed")
	require.NoError(t, w.Start(), "Failed to start watcher")
	t.Cleanup(w.Stop)
	return w
}

// waitForEvent reads events until one matches path and kind.
func waitForEvent(t *testing.T, events <-chan preview.FileEvent, path string, kind preview.FileEventKind) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "Event channel closed unexpectedly")
			t.Logf("Received event: %+v", ev)
			if ev.Path == path && ev.Kind == kind {
				return
			}
		case <-timeout:
			t.Fatalf("Timeout waiting for %s event on %s", kind, path)
		}
	}
}

// waitForClose discards events still buffered in a closed subscription and
// fails unless the channel is closed behind them.
func waitForClose(t *testing.T, events <-chan preview.FileEvent) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Logf("Discarding buffered event: %+v", ev)
		case <-timeout:
			t.Fatal("Closed subscription should close its channel")
		}
	}
}

func TestWatcherFsnotify(t *testing.T) {
	tempDir := t.TempDir()
	w := startWatcher(t)

	sub, err := w.Watch(tempDir)
	require.NoError(t, err, "Failed to watch directory")
	assert.Equal(t, []string{filepath.Clean(tempDir)}, w.GetDirectories())

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	testFilePath := filepath.Join(tempDir, "a.dat")
	require.NoError(t, os.WriteFile(testFilePath, []byte{0xA5}, 0644))
	waitForEvent(t, sub.Events(), testFilePath, preview.FileChanged)

	require.NoError(t, os.WriteFile(testFilePath, []byte{0xA5, 0x00}, 0644))
	waitForEvent(t, sub.Events(), testFilePath, preview.FileChanged)

	require.NoError(t, os.Remove(testFilePath))
	waitForEvent(t, sub.Events(), testFilePath, preview.FileDeleted)
}

func TestWatcherRenameIsDeletion(t *testing.T) {
	tempDir := t.TempDir()
	w := startWatcher(t)

	oldPath := filepath.Join(tempDir, "a.dat")
	require.NoError(t, os.WriteFile(oldPath, []byte{1}, 0644))

	sub, err := w.Watch(tempDir)
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.Rename(oldPath, filepath.Join(tempDir, "b.dat")))
	waitForEvent(t, sub.Events(), oldPath, preview.FileDeleted)
}

func TestWatcherFanOut(t *testing.T) {
	tempDir := t.TempDir()
	w := startWatcher(t)

	first, err := w.Watch(tempDir)
	require.NoError(t, err)
	second, err := w.Watch(tempDir)
	require.NoError(t, err)
	assert.Len(t, w.GetDirectories(), 1)
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(tempDir, "a.dat")
	require.NoError(t, os.WriteFile(path, []byte{1}, 0644))
	waitForEvent(t, first.Events(), path, preview.FileChanged)
	waitForEvent(t, second.Events(), path, preview.FileChanged)

	// Closing one subscription keeps the directory watched for the other
	require.NoError(t, first.Close())
	require.NoError(t, first.Close())
	waitForClose(t, first.Events())
	assert.Len(t, w.GetDirectories(), 1)

	require.NoError(t, second.Close())
	assert.Empty(t, w.GetDirectories())
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Stop()

	_, err = w.Watch(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.dat")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = w.Watch(file)
	assert.Error(t, err)
}

func TestWatcherStopClosesSubscriptions(t *testing.T) {
	tempDir := t.TempDir()
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(), "Second start should fail")

	sub, err := w.Watch(tempDir)
	require.NoError(t, err)

	w.Stop()
	assert.False(t, w.IsRunning())

	waitForClose(t, sub.Events())
	assert.NoError(t, sub.Close())
	w.Stop()
}
