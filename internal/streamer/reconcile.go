package streamer

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"
)

// ReconcileSummary counts one pass. Filtered files never reached an upload
// attempt; Skipped ones were attempted and turned out not to be uploadable.
type ReconcileSummary struct {
	Seen     int
	Filtered int
	Uploaded int
	NotFound int
	Failed   int
	Skipped  int
	Duration time.Duration
}

func (r *ReconcileSummary) add(out UploadOutcome) {
	switch out.Status {
	case StatusUploaded:
		r.Uploaded++
	case StatusNotFound:
		r.NotFound++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Reconcile uploads every eligible file under the root, unconditionally.
// There is no record of earlier uploads, so unchanged files are sent again and
// simply overwrite their objects. Per file problems are logged and counted.
func (s *Synchronizer) Reconcile(ctx context.Context) *ReconcileSummary {
	start := time.Now()
	summary := &ReconcileSummary{}
	slog.Info("initial scan start", "root", s.root, "bucket", s.store.Bucket())

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("initial scan", "path", path, "error", walkErr)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		summary.Seen++
		if !s.filter.Eligible(path) {
			summary.Filtered++
			return nil
		}

		out := s.UploadFile(ctx, path)
		out.log("initial scan")
		summary.add(out)
		return nil
	})
	summary.Duration = time.Since(start)

	if err != nil {
		slog.Warn("initial scan interrupted", "error", err, "uploaded", summary.Uploaded)
		return summary
	}

	slog.Info("initial scan done",
		"seen", summary.Seen,
		"filtered", summary.Filtered,
		"uploaded", summary.Uploaded,
		"notFound", summary.NotFound,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"took", summary.Duration.Round(time.Millisecond),
	)
	return summary
}
