package blob

import (
	"io"
	"time"
)

type PutFileParams struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

type PutFileResponse struct {
	Bucket       string
	Key          string
	ETag         string
	Version      string
	Size         int64
	LastModified time.Time
}

type ProbeResult struct {
	Endpoint    string
	Buckets     []string
	BucketFound bool
}
