package streamer

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

type UploadStatus int

const (
	StatusUploaded UploadStatus = iota
	StatusNotFound
	StatusFailed
	StatusSkipped
)

func (s UploadStatus) String() string {
	switch s {
	case StatusUploaded:
		return "uploaded"
	case StatusNotFound:
		return "not found"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// UploadOutcome is the result of one upload attempt. It is logged and
// counted, never persisted.
type UploadOutcome struct {
	Status   UploadStatus
	Path     string
	Key      string
	Bucket   string
	Size     int64
	Duration time.Duration
	Err      error
}

// log writes the outcome at a level that matches its severity. trigger is
// what caused the attempt (initial scan or a watcher event).
func (o UploadOutcome) log(trigger string) {
	switch o.Status {
	case StatusUploaded:
		slog.Info("upload",
			"status", o.Status.String(),
			"trigger", trigger,
			"path", o.Path,
			"bucket", o.Bucket,
			"key", o.Key,
			"size", humanize.Bytes(uint64(o.Size)),
			"took", o.Duration.Round(time.Millisecond),
		)
	case StatusNotFound:
		slog.Warn("upload", "status", o.Status.String(), "trigger", trigger, "path", o.Path)
	case StatusFailed:
		slog.Error("upload",
			"status", o.Status.String(),
			"trigger", trigger,
			"path", o.Path,
			"bucket", o.Bucket,
			"key", o.Key,
			"error", o.Err,
		)
	case StatusSkipped:
		slog.Debug("upload", "status", o.Status.String(), "trigger", trigger, "path", o.Path, "reason", o.Err)
	}
}
