package blob

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Probe checks that the store answers and accepts our credentials by listing
// buckets. It is read-only and makes a single attempt: the configured retries
// apply to uploads only.
func (c *Client) Probe(ctx context.Context) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := c.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{}, singleAttempt)
	if err != nil {
		return nil, newError("probe", "", "", err)
	}

	result := &ProbeResult{
		Endpoint: c.config.Endpoint,
		Buckets:  make([]string, 0, len(resp.Buckets)),
	}
	for _, b := range resp.Buckets {
		name := aws.ToString(b.Name)
		result.Buckets = append(result.Buckets, name)
		if name == c.config.BucketName {
			result.BucketFound = true
		}
	}
	return result, nil
}

func singleAttempt(o *s3.Options) {
	o.RetryMaxAttempts = 1
}

// PutFile writes params.Body under params.Key, replacing any existing object.
// Large bodies go through multipart upload.
func (c *Client) PutFile(ctx context.Context, params *PutFileParams) (*PutFileResponse, error) {
	input := &s3.PutObjectInput{
		Bucket: &c.config.BucketName,
		Key:    &params.Key,
		Body:   params.Body,
	}
	if params.ContentType != "" {
		input.ContentType = aws.String(params.ContentType)
	}

	out, err := c.uploader.Upload(ctx, input)
	if err != nil {
		return nil, newError("put", c.config.BucketName, params.Key, err)
	}

	return &PutFileResponse{
		Bucket:       c.config.BucketName,
		Key:          params.Key,
		ETag:         strings.ReplaceAll(aws.ToString(out.ETag), "\"", ""),
		Version:      aws.ToString(out.VersionID),
		Size:         params.Size,
		LastModified: time.Now().UTC(),
	}, nil
}
