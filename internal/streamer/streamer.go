package streamer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/radovskyb/watcher"

	"github.com/olist-lakehouse/lakestream/internal/blob"
	"github.com/olist-lakehouse/lakestream/internal/utils"
)

var (
	ErrStoreUnreachable = errors.New("object store unreachable")
	ErrNoWatchRoot      = errors.New("watch root unavailable")
)

// ObjectStore is the destination of mirrored files.
type ObjectStore interface {
	Probe(ctx context.Context) (*blob.ProbeResult, error)
	PutFile(ctx context.Context, params *blob.PutFileParams) (*blob.PutFileResponse, error)
	Bucket() string
	Endpoint() string
}

type Config struct {
	WatchRoot     string
	PollInterval  time.Duration
	UploadTimeout time.Duration
	// IgnoreFile is an optional gitignore style file, empty to disable.
	IgnoreFile string
	RunID      string
}

// Synchronizer mirrors files arriving under a local directory into an object
// store bucket. It owns the store client for its whole lifetime.
type Synchronizer struct {
	root          string
	interval      time.Duration
	uploadTimeout time.Duration
	ignoreFile    string
	store         ObjectStore
	filter        *PathFilter
	status        *statusTracker
}

func New(cfg *Config, store ObjectStore) *Synchronizer {
	return &Synchronizer{
		root:          cfg.WatchRoot,
		interval:      cfg.PollInterval,
		uploadTimeout: cfg.UploadTimeout,
		ignoreFile:    cfg.IgnoreFile,
		store:         store,
		filter:        NewPathFilter(cfg.WatchRoot),
		status: newStatusTracker(Snapshot{
			RunID:     cfg.RunID,
			WatchRoot: cfg.WatchRoot,
			Bucket:    store.Bucket(),
			Endpoint:  store.Endpoint(),
			StartedAt: time.Now().UTC(),
		}),
	}
}

func (s *Synchronizer) State() State {
	return s.status.state()
}

func (s *Synchronizer) Snapshot() Snapshot {
	return s.status.snapshot()
}

func (s *Synchronizer) Filter() *PathFilter {
	return s.filter
}

func (s *Synchronizer) setState(state State) {
	s.status.setState(state)
	slog.Info("streamer", "state", state.String())
}

// Run probes the store, reconciles the whole tree once and then watches for
// changes until ctx is cancelled. Only a failed probe or an unusable watch
// root make it return an error; a clean shutdown returns nil.
func (s *Synchronizer) Run(ctx context.Context) error {
	defer s.setState(StateStopped)

	if err := s.prepare(ctx); err != nil {
		return err
	}

	// arm before scanning so nothing written during the scan is missed
	pw := NewPollWatcher(s.root, s.interval)
	if err := pw.Arm(); err != nil {
		return fmt.Errorf("%w: %w", ErrNoWatchRoot, err)
	}

	s.Reconcile(ctx)
	if ctx.Err() != nil {
		s.setState(StateStopping)
		return nil
	}

	s.setState(StateWatching)
	err := pw.Run(ctx, s.handleEvent)
	s.setState(StateStopping)
	return err
}

// Once probes the store and runs a single reconciliation pass.
func (s *Synchronizer) Once(ctx context.Context) (*ReconcileSummary, error) {
	defer s.setState(StateStopped)

	if err := s.prepare(ctx); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx), nil
}

// prepare covers STARTING -> PROBING_STORE -> RECONCILING.
func (s *Synchronizer) prepare(ctx context.Context) error {
	s.setState(StateStarting)
	slog.Info("streamer start", "root", s.root, "bucket", s.store.Bucket(), "endpoint", s.store.Endpoint())

	s.setState(StateProbingStore)
	if err := s.Probe(ctx); err != nil {
		return err
	}

	s.setState(StateReconciling)
	if err := utils.EnsureDir(s.root); err != nil {
		return fmt.Errorf("%w: create %q: %w", ErrNoWatchRoot, s.root, err)
	}
	if err := s.filter.LoadIgnoreFile(s.ignoreFile); err != nil {
		// bad rules only widen what gets mirrored, keep going
		slog.Warn("ignore rules", "path", s.ignoreFile, "error", err)
	}
	return nil
}

// Probe verifies the store is reachable with the configured credentials.
func (s *Synchronizer) Probe(ctx context.Context) error {
	res, err := s.store.Probe(ctx)
	if err != nil {
		slog.Error("object store probe failed", "endpoint", s.store.Endpoint(), "error", err)
		return fmt.Errorf("%w: %w", ErrStoreUnreachable, err)
	}

	slog.Info("object store connected", "endpoint", res.Endpoint, "buckets", len(res.Buckets))
	if !res.BucketFound {
		slog.Warn("target bucket not listed, uploads will fail until it exists", "bucket", s.store.Bucket())
	}
	return nil
}

func (s *Synchronizer) handleEvent(ctx context.Context, op watcher.Op, path string) {
	if !s.filter.Candidate(path) {
		return
	}
	slog.Info("file event", "event", op.String(), "path", path)
	out := s.UploadFile(ctx, path)
	out.log("event")
}
