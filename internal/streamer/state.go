package streamer

import (
	"sync"
	"time"
)

type State int32

const (
	StateStarting State = iota
	StateProbingStore
	StateReconciling
	StateWatching
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateProbingStore:
		return "PROBING_STORE"
	case StateReconciling:
		return "RECONCILING"
	case StateWatching:
		return "WATCHING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Healthy is true while the synchronizer is doing useful work.
func (s State) Healthy() bool {
	return s == StateReconciling || s == StateWatching
}

// Snapshot is a point-in-time view of a running synchronizer.
type Snapshot struct {
	RunID     string    `json:"runId"`
	State     string    `json:"state"`
	WatchRoot string    `json:"watchRoot"`
	Bucket    string    `json:"bucket"`
	Endpoint  string    `json:"endpoint"`
	StartedAt time.Time `json:"startedAt"`
	Uploaded  int64     `json:"uploaded"`
	NotFound  int64     `json:"notFound"`
	Failed    int64     `json:"failed"`
	Bytes     int64     `json:"bytes"`
	InFlight  string    `json:"inFlight,omitempty"`
	LastKey   string    `json:"lastKey,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	LastAt    time.Time `json:"lastAt,omitzero"`
}

// statusTracker is written by the single upload goroutine and read by the
// status API, hence the mutex.
type statusTracker struct {
	mu   sync.RWMutex
	snap Snapshot
	st   State
}

func newStatusTracker(base Snapshot) *statusTracker {
	base.State = StateStarting.String()
	return &statusTracker{snap: base, st: StateStarting}
}

func (t *statusTracker) setState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.st = s
	t.snap.State = s.String()
}

func (t *statusTracker) state() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.st
}

func (t *statusTracker) begin(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.InFlight = key
}

func (t *statusTracker) record(out UploadOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.InFlight = ""
	switch out.Status {
	case StatusUploaded:
		t.snap.Uploaded++
		t.snap.Bytes += out.Size
		t.snap.LastKey = out.Key
		t.snap.LastAt = time.Now().UTC()
	case StatusNotFound:
		t.snap.NotFound++
	case StatusFailed:
		t.snap.Failed++
		if out.Err != nil {
			t.snap.LastError = out.Err.Error()
		}
	}
}

func (t *statusTracker) snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
