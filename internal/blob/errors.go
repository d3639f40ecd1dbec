package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	ErrUnreachable    = errors.New("blob: store unreachable")
	ErrAccessDenied   = errors.New("blob: access denied")
	ErrBucketNotFound = errors.New("blob: bucket not found")
	ErrRejected       = errors.New("blob: request rejected")
	ErrTimeout        = errors.New("blob: operation timeout")
)

// Error carries the operation context of a failed store call.
// Kind is one of the sentinel errors above and is matched by errors.Is.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target = e.Bucket + "/" + e.Key
	}
	if target == "" {
		return fmt.Sprintf("blob.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("blob.%s %s: %v", e.Op, target, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Kind:   classify(err),
		Err:    err,
	}
}

// classify maps SDK failures onto the sentinel kinds. Anything that never got
// an API response (dns, refused connection, tls) counts as unreachable.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden", "InvalidToken":
			return ErrAccessDenied
		case "NoSuchBucket", "NotFound":
			return ErrBucketNotFound
		case "RequestTimeout", "RequestTimeTooSkewed":
			return ErrTimeout
		}
		return ErrRejected
	}
	return ErrUnreachable
}
