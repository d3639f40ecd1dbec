package blob

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	probeTimeout   = 15 * time.Second
	uploadPartSize = 16 * 1024 * 1024
)

// s3API is the subset of the S3 client used here. Tests swap in a mock.
type s3API interface {
	manager.UploadAPIClient
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// Client talks to one bucket of an S3 compatible store. It is created once at
// startup and reused for the probe and every upload.
type Client struct {
	s3Client s3API
	uploader *manager.Uploader
	config   *S3Config
}

func NewClient(s3Client s3API, cfg *S3Config) *Client {
	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
		u.Concurrency = 1
	})
	return &Client{
		s3Client: s3Client,
		uploader: uploader,
		config:   cfg,
	}
}

func NewClientWithS3Config(ctx context.Context, cfg *S3Config) (*Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          16,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	opts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(cfg.MaxRetries))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	awsClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewClient(awsClient, cfg), nil
}

func (c *Client) Bucket() string {
	return c.config.BucketName
}

func (c *Client) Endpoint() string {
	return c.config.Endpoint
}
