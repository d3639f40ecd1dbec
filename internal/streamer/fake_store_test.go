package streamer

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/olist-lakehouse/lakestream/internal/blob"
)

type putRecord struct {
	Key         string
	Body        []byte
	ContentType string
}

// fakeStore records every upload in memory.
type fakeStore struct {
	mu        sync.Mutex
	puts      []putRecord
	probeErr  error
	failKeys  map[string]error
	beforePut func(key string)
	ctxErrs   []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{failKeys: map[string]error{}}
}

func (f *fakeStore) Probe(context.Context) (*blob.ProbeResult, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &blob.ProbeResult{Endpoint: f.Endpoint(), Buckets: []string{"raw"}, BucketFound: true}, nil
}

func (f *fakeStore) PutFile(ctx context.Context, params *blob.PutFileParams) (*blob.PutFileResponse, error) {
	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	if f.beforePut != nil {
		f.beforePut(params.Key)
	}

	f.mu.Lock()
	failErr, fail := f.failKeys[params.Key]
	f.mu.Unlock()
	if fail {
		return nil, failErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, putRecord{Key: params.Key, Body: body, ContentType: params.ContentType})
	return &blob.PutFileResponse{Bucket: "raw", Key: params.Key, Size: int64(len(body))}, nil
}

func (f *fakeStore) Bucket() string   { return "raw" }
func (f *fakeStore) Endpoint() string { return "http://minio:9000" }

func (f *fakeStore) failKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = errors.New("store rejected write")
}

func (f *fakeStore) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.puts))
	for _, p := range f.puts {
		keys = append(keys, p.Key)
	}
	return keys
}

func (f *fakeStore) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.puts {
		if p.Key == key {
			n++
		}
	}
	return n
}

func (f *fakeStore) last(key string) (putRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.puts) - 1; i >= 0; i-- {
		if f.puts[i].Key == key {
			return f.puts[i], true
		}
	}
	return putRecord{}, false
}
