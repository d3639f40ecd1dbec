package streamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/olist-lakehouse/lakestream/internal/blob"
)

var errNotRegular = errors.New("not a regular file")

// UploadFile mirrors one local file to the store under its object key.
// Every failure is reported in the outcome; nothing is returned as an error
// so one bad file can never stop the caller.
//
// The transfer itself is detached from ctx cancellation and bounded by the
// upload timeout instead, so a shutdown lets the in-flight upload finish.
func (s *Synchronizer) UploadFile(ctx context.Context, path string) (out UploadOutcome) {
	start := time.Now()
	out = UploadOutcome{Path: path, Bucket: s.store.Bucket()}
	defer func() {
		out.Duration = time.Since(start)
		s.status.record(out)
	}()

	key, err := ObjectKey(s.root, path)
	if err != nil {
		out.Status, out.Err = StatusSkipped, err
		return out
	}
	out.Key = key

	// time may have passed since detection, the file can be gone by now
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			out.Status, out.Err = StatusNotFound, err
		} else {
			out.Status, out.Err = StatusFailed, err
		}
		return out
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		out.Status, out.Err = StatusFailed, err
		return out
	}
	if !info.Mode().IsRegular() {
		out.Status, out.Err = StatusSkipped, errNotRegular
		return out
	}
	out.Size = info.Size()

	contentType, err := detectContentType(file)
	if err != nil {
		out.Status, out.Err = StatusFailed, err
		return out
	}

	uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.uploadTimeout)
	defer cancel()

	s.status.begin(key)
	if _, err := s.store.PutFile(uploadCtx, &blob.PutFileParams{
		Key:         key,
		Body:        file,
		Size:        info.Size(),
		ContentType: contentType,
	}); err != nil {
		out.Status, out.Err = StatusFailed, err
		return out
	}

	out.Status = StatusUploaded
	return out
}

// detectContentType sniffs the head of file and rewinds it.
func detectContentType(file *os.File) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return mtype.String(), nil
}
