package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/olist-lakehouse/lakestream/internal/utils"
)

const (
	DefaultEndpoint      = "http://minio:9000"
	DefaultAccessKey     = "minioadmin"
	DefaultSecretKey     = "minioadmin"
	DefaultBucket        = "raw"
	DefaultRegion        = "us-east-1"
	DefaultDataPath      = "/monitored_source_data"
	DefaultSubdir        = "raw"
	DefaultPollInterval  = time.Second
	DefaultUploadTimeout = 5 * time.Minute
	DefaultMaxRetries    = 3
	DefaultIgnoreFile    = ".lakestreamignore"
	DefaultLogLevel      = "info"
)

var (
	ErrInvalidEndpoint = errors.New("invalid object store endpoint")
	ErrInvalidBucket   = errors.New("bucket name is required")
	ErrNoCredentials   = errors.New("access key and secret key are required")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Config is the full runtime configuration of the streamer.
type Config struct {
	Store Store

	DataPath      string
	Subdir        string
	PollInterval  time.Duration
	UploadTimeout time.Duration
	IgnoreFile    string
	HTTPAddr      string
	LogFile       string
	LogLevel      string

	// WatchRoot is derived from DataPath and Subdir by Validate.
	WatchRoot string
}

// Store holds the S3 compatible destination settings.
type Store struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	MaxRetries int
}

// Validate normalizes paths and checks every field. It must be called before use.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}

	dataPath, err := utils.ResolvePath(c.DataPath)
	if err != nil {
		return fmt.Errorf("data path: %w", err)
	}
	c.DataPath = dataPath
	c.WatchRoot = filepath.Clean(filepath.Join(dataPath, c.Subdir))

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval %s: %w", c.PollInterval, ErrInvalidDuration)
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("upload timeout %s: %w", c.UploadTimeout, ErrInvalidDuration)
	}

	if c.LogFile != "" {
		logFile, err := utils.ResolvePath(c.LogFile)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		c.LogFile = logFile
	}

	return nil
}

func (s *Store) Validate() error {
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidEndpoint, s.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidEndpoint, s.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidEndpoint, s.Endpoint)
	}
	if s.Bucket == "" {
		return ErrInvalidBucket
	}
	if s.AccessKey == "" || s.SecretKey == "" {
		return ErrNoCredentials
	}
	if s.Region == "" {
		s.Region = DefaultRegion
	}
	if s.MaxRetries < 1 {
		s.MaxRetries = 1
	}
	return nil
}

// IgnoreFilePath is empty when ignore rules are disabled.
func (c *Config) IgnoreFilePath() string {
	if c.IgnoreFile == "" {
		return ""
	}
	if filepath.IsAbs(c.IgnoreFile) {
		return c.IgnoreFile
	}
	return filepath.Join(c.WatchRoot, c.IgnoreFile)
}
