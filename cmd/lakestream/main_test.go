package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olist-lakehouse/lakestream/internal/config"
	"github.com/olist-lakehouse/lakestream/internal/streamer"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, exitOK},
		{"store unreachable", fmt.Errorf("%w: dial tcp", streamer.ErrStoreUnreachable), exitFailed},
		{"watch root", fmt.Errorf("%w: permission denied", streamer.ErrNoWatchRoot), exitFailed},
		{"bad endpoint", fmt.Errorf("%w \"ftp://x\"", config.ErrInvalidEndpoint), exitConfig},
		{"no bucket", config.ErrInvalidBucket, exitConfig},
		{"bad duration", fmt.Errorf("poll interval: %w", config.ErrInvalidDuration), exitConfig},
		{"bad log level", fmt.Errorf("%w \"loud\"", errInvalidLogLevel), exitConfig},
		{"other", errors.New("boom"), exitFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestRootHelpDocumentsExitStatus(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "1  runtime failure, including an unreachable object store")
	assert.Contains(t, rootCmd.Long, "2  invalid configuration")
}

func TestStreamerConfig(t *testing.T) {
	cfg := &config.Config{
		WatchRoot:     "/data/raw",
		PollInterval:  config.DefaultPollInterval,
		UploadTimeout: config.DefaultUploadTimeout,
		IgnoreFile:    ".lakestreamignore",
	}
	app := &appEnv{cfg: cfg, runID: "r1"}

	sc := app.streamerConfig()
	assert.Equal(t, "/data/raw", sc.WatchRoot)
	assert.Equal(t, "/data/raw/.lakestreamignore", sc.IgnoreFile)
	assert.Equal(t, config.DefaultPollInterval, sc.PollInterval)
	assert.Equal(t, "r1", sc.RunID)
}

func TestRootFlagsRegistered(t *testing.T) {
	for _, name := range []string{"env-file", "endpoint", "bucket", "data-path", "subdir", "log-file", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	for _, name := range []string{"interval", "http-addr"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
}
