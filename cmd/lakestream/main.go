package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/olist-lakehouse/lakestream/internal/blob"
	"github.com/olist-lakehouse/lakestream/internal/config"
	"github.com/olist-lakehouse/lakestream/internal/statusapi"
	"github.com/olist-lakehouse/lakestream/internal/streamer"
	"github.com/olist-lakehouse/lakestream/internal/utils"
	"github.com/olist-lakehouse/lakestream/internal/version"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "lakestream",
	Short:         "Mirror a local landing directory into an S3 compatible bucket",
	Long:          `Mirror a local landing directory into an S3 compatible bucket.

Every eligible file is uploaded once at startup, then new and modified files
are uploaded as the directory is polled.

Exit status:
  0  stopped cleanly
  1  runtime failure, including an unreachable object store
  2  invalid configuration`,
	Version:       version.Detailed(),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		// config is good, errors from here on are not usage errors
		cmd.SilenceUsage = true
		showHeader(app.cfg)

		store, err := newStore(cmd.Context(), app.cfg)
		if err != nil {
			return err
		}
		s := streamer.New(app.streamerConfig(), store)

		g, ctx := errgroup.WithContext(cmd.Context())
		if app.cfg.HTTPAddr != "" {
			srv := statusapi.New(app.cfg.HTTPAddr, s)
			g.Go(func() error {
				return srv.Start(ctx)
			})
		}
		g.Go(func() error {
			return s.Run(ctx)
		})

		defer slog.Info("Bye!")
		return g.Wait()
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().SortFlags = false

	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file with MINIO_* and LAKESTREAM_* variables")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "Object store endpoint URL (MINIO_ENDPOINT)")
	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Destination bucket (MINIO_RAW_BUCKET)")
	rootCmd.PersistentFlags().StringP("data-path", "d", "", "Local data path (LOCAL_DATA_PATH)")
	rootCmd.PersistentFlags().String("subdir", "", "Sub directory of the data path to mirror (LAKESTREAM_SUBDIR)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this rotating file (LAKESTREAM_LOG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (LAKESTREAM_LOG_LEVEL)")

	rootCmd.Flags().Duration("interval", 0, "Poll interval of the directory watcher (LAKESTREAM_POLL_INTERVAL)")
	rootCmd.Flags().String("http-addr", "", "Serve /healthz and /v1/status on this address (LAKESTREAM_HTTP_ADDR)")
}

func main() {
	slog.SetDefault(slog.New(newConsoleHandler(slog.LevelInfo)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("lakestream", "error", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps the command error to the process status. Bad configuration
// is 2, anything else that stopped the run (an unreachable store included)
// is 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case isConfigError(err):
		return exitConfig
	default:
		return exitFailed
	}
}

func isConfigError(err error) bool {
	return errors.Is(err, config.ErrInvalidEndpoint) ||
		errors.Is(err, config.ErrInvalidBucket) ||
		errors.Is(err, config.ErrNoCredentials) ||
		errors.Is(err, config.ErrInvalidDuration) ||
		errors.Is(err, errInvalidLogLevel)
}

func newStore(ctx context.Context, cfg *config.Config) (*blob.Client, error) {
	s3Cfg := blob.WithMinioConfig(cfg.Store.Endpoint, cfg.Store.Bucket, cfg.Store.AccessKey, cfg.Store.SecretKey)
	s3Cfg.Region = cfg.Store.Region
	s3Cfg.MaxRetries = cfg.Store.MaxRetries

	client, err := blob.NewClientWithS3Config(ctx, s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	return client, nil
}

func showHeader(cfg *config.Config) {
	color.New(color.FgHiCyan, color.Bold).Print(lakestreamArt + "\n")
	fmt.Printf("%s %s\n", cyan("version"), version.Short())
	fmt.Printf("%s   %s\n", cyan("watch"), cfg.WatchRoot)
	fmt.Printf("%s  %s/%s\n\n", cyan("target"), cfg.Store.Endpoint, cfg.Store.Bucket)
}

const lakestreamArt = ` _       _                _
| | __ _| | _____ ___| |_ _ __ ___  __ _ _ __ ___
| |/ _' | |/ / _ \ __| __| '__/ _ \/ _' | '_ ' _ \
| | (_| |   <  __\__ \ |_| | |  __/ (_| | | | | | |
|_|\__,_|_|\_\___|___/\__|_|  \___|\__,_|_| |_| |_|`

// appEnv is what every sub command needs once flags are parsed.
type appEnv struct {
	cfg     *config.Config
	runID   string
	closeFn func() error
}

func (a *appEnv) Close() {
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
		}
	}
}

func (a *appEnv) streamerConfig() *streamer.Config {
	return &streamer.Config{
		WatchRoot:     a.cfg.WatchRoot,
		PollInterval:  a.cfg.PollInterval,
		UploadTimeout: a.cfg.UploadTimeout,
		IgnoreFile:    a.cfg.IgnoreFilePath(),
		RunID:         a.runID,
	}
}

// setup loads the env file and configuration, then replaces the default
// logger with the configured one.
func setup(cmd *cobra.Command) (*appEnv, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, closeFn, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	runID := newRunID()
	slog.SetDefault(logger.With("run", runID))

	slog.Debug("config",
		"endpoint", cfg.Store.Endpoint,
		"bucket", cfg.Store.Bucket,
		"region", cfg.Store.Region,
		"accessKey", utils.MaskSecret(cfg.Store.AccessKey),
		"secretKey", utils.MaskSecret(cfg.Store.SecretKey),
		"root", cfg.WatchRoot,
		"interval", cfg.PollInterval,
	)
	return &appEnv{cfg: cfg, runID: runID, closeFn: closeFn}, nil
}
