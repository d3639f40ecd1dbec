package streamer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/radovskyb/watcher"
	"golang.org/x/sync/errgroup"
)

// EventHandler is called synchronously for every relevant change. The poll
// loop does not advance while it runs.
type EventHandler func(ctx context.Context, op watcher.Op, path string)

// PollWatcher detects changes under a directory tree by diffing periodic
// snapshots instead of relying on OS notifications, which are unreliable on
// bind mounts and network volumes.
type PollWatcher struct {
	root     string
	interval time.Duration
	w        *watcher.Watcher
}

func NewPollWatcher(root string, interval time.Duration) *PollWatcher {
	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Write, watcher.Rename, watcher.Move)
	return &PollWatcher{
		root:     root,
		interval: interval,
		w:        w,
	}
}

// Arm takes the baseline snapshot. Every change made after Arm returns is
// reported once Run starts polling, even if Run starts later.
func (pw *PollWatcher) Arm() error {
	if err := pw.w.AddRecursive(pw.root); err != nil {
		return fmt.Errorf("watch %q: %w", pw.root, err)
	}
	slog.Debug("file watcher armed", "dir", pw.root, "entries", len(pw.w.WatchedFiles()))
	return nil
}

// Run polls until ctx is cancelled, then closes the watcher and waits for the
// poll goroutine to exit. Events that arrive after cancellation are dropped.
func (pw *PollWatcher) Run(ctx context.Context, handle EventHandler) error {
	slog.Info("file watcher start", "dir", pw.root, "interval", pw.interval)
	defer slog.Info("file watcher stopped")

	startDone := make(chan struct{})
	var g errgroup.Group

	g.Go(func() error {
		defer close(startDone)
		return pw.w.Start(pw.interval)
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-startDone:
			return nil
		}

		slog.Info("file watcher stopping")
		// Close is a no-op until Start is running, so wait for it first
		started := make(chan struct{})
		go func() {
			pw.w.Wait()
			close(started)
		}()
		select {
		case <-started:
			pw.w.Close()
		case <-startDone:
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case event := <-pw.w.Event:
				if ctx.Err() != nil {
					slog.Debug("file watcher", "dropped", event.Path, "reason", "shutting down")
					continue
				}
				pw.dispatch(ctx, event, handle)
			case err := <-pw.w.Error:
				slog.Warn("file watcher", "error", err)
			case <-pw.w.Closed:
				return nil
			case <-startDone:
				return nil
			}
		}
	})

	return g.Wait()
}

func (pw *PollWatcher) dispatch(ctx context.Context, event watcher.Event, handle EventHandler) {
	if event.FileInfo != nil && event.IsDir() {
		return
	}

	switch event.Op {
	case watcher.Create, watcher.Write:
		handle(ctx, event.Op, event.Path)
	case watcher.Rename, watcher.Move:
		// the file now lives at a new path, treat it as created there
		handle(ctx, watcher.Create, event.Path)
	}
}
