package preview

import (
	"testing"
	"time"

	"datpeek/internal/container"
	"datpeek/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRendersDecodedImage(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "b.dat")

	require.Eventually(t, func() bool { return surface.frameCount() == 1 }, waitFor, tick)
	frame := surface.lastFrame()
	assert.Equal(t, cachePath("b.dat"), frame.Resource)
	assert.NoError(t, frame.Err)
	assert.Equal(t, container.JPEG, frame.Image.Codec)
	assert.Equal(t, byte(0x5A), frame.Image.Key)
	assert.Equal(t, plainJPEG(2048), frame.Image.Data)

	flush(t, s)
	assert.Equal(t, []string{MsgLoading, MsgLoadingSuccess, MsgSetActive}, surface.postTypes()[:3])
	assert.Equal(t, Active, s.State())
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, cacheDir, s.Root())
}

func TestOpenShowsMetrics(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "b.dat")

	require.Eventually(t, func() bool {
		return f.slotText(0) == "2.00KB" && f.slotText(1) == "640x480"
	}, waitFor, tick)
	assert.Equal(t, "2024-03-01 11:20:30", f.slotText(2))
	assert.Equal(t, cachePath("b.dat"), f.slotText(3))

	m := s.Metrics()
	assert.Equal(t, int64(2048), m.ByteSize)
	assert.Equal(t, "640x480", m.Dimensions)
	assert.Equal(t, cachePath("b.dat"), m.FileName)
}

func TestNavigation(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "b.dat")
	flush(t, s)

	s.RenderNext()
	flush(t, s)
	assert.Equal(t, cachePath("c.dat"), s.Resource())
	assert.Equal(t, cachePath("c.dat"), surface.lastFrame().Resource)
	assert.Equal(t, plainJPEG(3072), surface.lastFrame().Image.Data)
	assert.Equal(t, Active, s.State())
	require.Eventually(t, func() bool { return f.slotText(0) == "3.00KB" }, waitFor, tick)
	assert.Equal(t, cachePath("c.dat"), f.slotText(3))

	// c.dat is the last container; notes.txt is not a sibling
	frames := surface.frameCount()
	s.RenderNext()
	flush(t, s)
	assert.Equal(t, cachePath("c.dat"), s.Resource())
	assert.Equal(t, frames, surface.frameCount())

	s.RenderPrevious()
	s.RenderPrevious()
	flush(t, s)
	assert.Equal(t, cachePath("a.dat"), s.Resource())

	s.RenderPrevious()
	flush(t, s)
	assert.Equal(t, cachePath("a.dat"), s.Resource())

	assert.Equal(t, 1, f.storage.listCalls, "sibling listing is read once")
}

func TestNavigationMessages(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "a.dat")

	s.Receive(CommandMessage(MsgNext))
	flush(t, s)
	assert.Equal(t, cachePath("b.dat"), s.Resource())

	s.Receive(CommandMessage(MsgPrevious))
	flush(t, s)
	assert.Equal(t, cachePath("a.dat"), s.Resource())
}

func TestNavigationFromUnlistedResource(t *testing.T) {
	f := newFixture(t)
	f.storage.put(cachePath("late.dat"), maskedJPEG(16), created)

	s, surface := f.open(t, "late.dat")
	flush(t, s)
	frames := surface.frameCount()

	s.RenderNext()
	s.RenderPrevious()
	flush(t, s)
	assert.Equal(t, cachePath("late.dat"), s.Resource())
	assert.Equal(t, frames, surface.frameCount())
}

func TestMissingResourceRendersError(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "gone.dat")
	flush(t, s)

	frame := surface.lastFrame()
	require.Error(t, frame.Err)
	assert.True(t, errors.IsFileNotFound(frame.Err))
	assert.Equal(t, Active, s.State())
}

func TestReopenAsText(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")

	s.Receive(CommandMessage(MsgReopenAsText))
	flush(t, s)

	surface.mu.Lock()
	defer surface.mu.Unlock()
	assert.Equal(t, []string{cachePath("a.dat")}, surface.reopened)
}

func TestInvalidSizeMessageIgnored(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "a.dat")
	flush(t, s)

	s.Receive(Message{Type: MsgSize, Value: "wide"})
	s.Receive(Message{Type: MsgSize, Value: 12})
	s.Receive(Message{Type: "bogus"})
	flush(t, s)
	assert.Equal(t, "640x480", s.Metrics().Dimensions)
}

func TestDisposeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "a.dat")
	require.Eventually(t, func() bool { return f.slotText(3) != "" }, waitFor, tick)

	s.Dispose()
	s.Dispose()
	f.coord.Dispose(s)

	assert.Equal(t, Disposed, s.State())
	assert.False(t, f.anyVisible())
	assert.True(t, f.watcher.sub(cacheDir, 0).isClosed())
	assert.Empty(t, f.coord.Sessions())
	assert.Nil(t, f.coord.Active())
	assert.Equal(t, []bool{true, false}, f.activeChanges())

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestDisposedSessionIgnoresEvents(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")
	flush(t, s)
	frames := surface.frameCount()

	s.Dispose()
	s.RenderNext()
	s.SetFocus(true)
	s.Receive(SizeMessage(1, 1))
	flush(t, s)

	assert.Equal(t, cachePath("a.dat"), s.Resource())
	assert.Equal(t, frames, surface.frameCount())
	assert.False(t, f.anyVisible())
}

func TestMetricsDiscardedAfterDispose(t *testing.T) {
	f := newFixture(t)
	gate := make(chan struct{})
	f.storage.statGate = gate

	s, _ := f.open(t, "a.dat")
	flush(t, s)
	require.Eventually(t, func() bool { return f.slotText(3) != "" }, waitFor, tick)

	s.Dispose()
	close(gate)

	assert.Never(t, f.anyVisible, 100*time.Millisecond, tick)
	assert.Zero(t, s.Metrics().ByteSize)
}

func TestFocusChanges(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "a.dat")
	require.Eventually(t, func() bool { return f.slotText(0) == "1.00KB" }, waitFor, tick)

	f.coord.FocusChanged(s, false)
	flush(t, s)
	assert.Equal(t, Visible, s.State())
	assert.Nil(t, f.coord.Active())

	f.coord.FocusChanged(s, true)
	flush(t, s)
	assert.Equal(t, Active, s.State())
	assert.Same(t, s, f.coord.Active())
	assert.Equal(t, []bool{true, false, true}, f.activeChanges())
}

func TestFileChangeRerenders(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")
	flush(t, s)
	frames := surface.frameCount()

	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("b.dat"), Kind: FileChanged})
	f.storage.put(cachePath("a.dat"), maskedJPEG(4096), created)
	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileChanged})

	require.Eventually(t, func() bool { return surface.frameCount() == frames+1 }, waitFor, tick)
	assert.Equal(t, plainJPEG(4096), surface.lastFrame().Image.Data)
	require.Eventually(t, func() bool { return f.slotText(0) == "4.00KB" }, waitFor, tick)
}

func TestRepeatedChangesRenderOnce(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")
	flush(t, s)
	frames := surface.frameCount()

	// a save is reported as a create followed by a write
	f.storage.put(cachePath("a.dat"), maskedJPEG(4096), created)
	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileChanged})
	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileChanged})

	require.Eventually(t, func() bool { return surface.frameCount() == frames+1 }, waitFor, tick)
	assert.Never(t, func() bool { return surface.frameCount() > frames+1 }, 4*changeSettle, tick)
	assert.Equal(t, plainJPEG(4096), surface.lastFrame().Image.Data)
}

func TestDeleteAfterChangeKeepsOrder(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")
	flush(t, s)
	frames := surface.frameCount()

	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileChanged})
	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileDeleted})

	require.Eventually(t, func() bool { return s.State() == Disposed }, waitFor, tick)
	assert.Equal(t, frames+1, surface.frameCount())
}

func TestFileDeleteDisposes(t *testing.T) {
	f := newFixture(t)
	s, surface := f.open(t, "a.dat")
	flush(t, s)

	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("c.dat"), Kind: FileDeleted})
	flush(t, s)
	assert.Equal(t, Active, s.State())

	f.watcher.emit(cacheDir, FileEvent{Path: cachePath("a.dat"), Kind: FileDeleted})
	require.Eventually(t, func() bool { return s.State() == Disposed }, waitFor, tick)

	surface.mu.Lock()
	assert.Equal(t, 1, surface.closed)
	surface.mu.Unlock()
	assert.Empty(t, f.coord.Sessions())
	assert.False(t, f.anyVisible())
}

func TestExportUsesCreationTimeName(t *testing.T) {
	f := newFixture(t)
	target := cachePath("out.jpg")
	f.dialog.path, f.dialog.ok = target, true

	s, _ := f.open(t, "a.dat")
	s.Export()
	flush(t, s)

	call := f.dialog.lastCall()
	assert.Equal(t, cachePath("2024-03-01 10_20_30.png"), call.defaultPath)
	assert.Equal(t, "2024-03-01 10:20:30", call.title)

	data, ok := f.storage.writtenTo(target)
	require.True(t, ok)
	assert.Equal(t, plainJPEG(1024), data)
	assert.Equal(t, target, s.SaveTarget())

	// the chosen location is offered again
	s.Receive(CommandMessage(MsgExport))
	flush(t, s)
	assert.Equal(t, target, f.dialog.lastCall().defaultPath)
}

func TestExportCancelled(t *testing.T) {
	f := newFixture(t)
	s, _ := f.open(t, "a.dat")

	s.Export()
	flush(t, s)

	f.storage.mu.Lock()
	assert.Empty(t, f.storage.written)
	f.storage.mu.Unlock()
	assert.Empty(t, s.SaveTarget())
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, cachePath("2024-01-02 03_04_05.png"), DefaultExportPath(cacheDir, "2024-01-02 03:04:05", ".png"))
	assert.Equal(t, cachePath("b.jpg"), DefaultExportPath(cacheDir, "b", ".jpg"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disposed", Disposed.String())
	assert.Equal(t, "visible", Visible.String())
	assert.Equal(t, "active", Active.String())
}
