package streamer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seenEvent struct {
	op   watcher.Op
	path string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []seenEvent
}

func (r *eventRecorder) handle(_ context.Context, op watcher.Op, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, seenEvent{op: op, path: path})
}

func (r *eventRecorder) has(op watcher.Op, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.op == op && e.path == path {
			return true
		}
	}
	return false
}

func (r *eventRecorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.path)
	}
	return out
}

func runWatcher(t *testing.T, pw *PollWatcher, rec *eventRecorder) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- pw.Run(ctx, rec.handle)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("watcher did not stop")
		}
	})
	return cancel
}

func TestPollWatcher_CreateAndWrite(t *testing.T) {
	root := t.TempDir()
	existing := writeFile(t, filepath.Join(root, "a.csv"), "v1")

	pw := NewPollWatcher(root, 20*time.Millisecond)
	require.NoError(t, pw.Arm())
	rec := &eventRecorder{}
	runWatcher(t, pw, rec)

	created := writeFile(t, filepath.Join(root, "sub", "b.csv"), "b")
	require.Eventually(t, func() bool {
		return rec.has(watcher.Create, created)
	}, waitFor, tick)

	require.NoError(t, os.WriteFile(existing, []byte("v2"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(existing, future, future))
	require.Eventually(t, func() bool {
		return rec.has(watcher.Write, existing)
	}, waitFor, tick)

	assert.NotContains(t, rec.paths(), filepath.Join(root, "sub"), "directories are not dispatched")
}

func TestPollWatcher_RenameIsCreate(t *testing.T) {
	root := t.TempDir()
	src := writeFile(t, filepath.Join(root, "tmp.csv"), "data")

	pw := NewPollWatcher(root, 20*time.Millisecond)
	require.NoError(t, pw.Arm())
	rec := &eventRecorder{}
	runWatcher(t, pw, rec)

	dst := filepath.Join(root, "final.csv")
	require.NoError(t, os.Rename(src, dst))
	require.Eventually(t, func() bool {
		return rec.has(watcher.Create, dst)
	}, waitFor, tick)
}

func TestPollWatcher_ChangesBeforeRun(t *testing.T) {
	root := t.TempDir()

	pw := NewPollWatcher(root, 20*time.Millisecond)
	require.NoError(t, pw.Arm())

	// written after arming but before polling starts
	late := writeFile(t, filepath.Join(root, "late.json"), "{}")

	rec := &eventRecorder{}
	runWatcher(t, pw, rec)
	require.Eventually(t, func() bool {
		return rec.has(watcher.Create, late)
	}, waitFor, tick)
}

func TestPollWatcher_RemoveIgnored(t *testing.T) {
	root := t.TempDir()
	doomed := writeFile(t, filepath.Join(root, "doomed.csv"), "x")

	pw := NewPollWatcher(root, 20*time.Millisecond)
	require.NoError(t, pw.Arm())
	rec := &eventRecorder{}
	runWatcher(t, pw, rec)

	require.NoError(t, os.Remove(doomed))
	marker := writeFile(t, filepath.Join(root, "marker.csv"), "m")
	require.Eventually(t, func() bool {
		return rec.has(watcher.Create, marker)
	}, waitFor, tick)
	assert.NotContains(t, rec.paths(), doomed)
}

func TestPollWatcher_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	pw := NewPollWatcher(root, 20*time.Millisecond)
	require.NoError(t, pw.Arm())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- pw.Run(ctx, func(context.Context, watcher.Op, string) {})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestPollWatcher_ArmMissingRoot(t *testing.T) {
	pw := NewPollWatcher(filepath.Join(t.TempDir(), "missing"), time.Second)
	assert.Error(t, pw.Arm())
}
