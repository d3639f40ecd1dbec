package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imroc/req/v3"
	"github.com/spf13/cobra"

	"github.com/olist-lakehouse/lakestream/internal/config"
	"github.com/olist-lakehouse/lakestream/internal/streamer"
	"github.com/olist-lakehouse/lakestream/internal/version"
)

const statusTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of a running lakestream",
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("url")
			if baseURL == "" {
				envFile, _ := cmd.Flags().GetString("env-file")
				if err := config.LoadEnvFile(envFile); err != nil {
					return err
				}
				cfg, err := config.Load(nil)
				if err != nil {
					return err
				}
				if cfg.HTTPAddr == "" {
					return fmt.Errorf("status api address unknown; pass --url or set LAKESTREAM_HTTP_ADDR")
				}
				baseURL = statusURL(cfg.HTTPAddr)
			}
			cmd.SilenceUsage = true

			snap, err := fetchStatus(cmd.Context(), baseURL)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().String("url", "", "Base URL of the status API, e.g. http://localhost:8089")
	return cmd
}

// statusURL turns a listen address into a URL reachable from this host.
func statusURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func fetchStatus(ctx context.Context, baseURL string) (*streamer.Snapshot, error) {
	var snap streamer.Snapshot
	resp, err := req.C().
		SetTimeout(statusTimeout).
		SetUserAgent(version.AppName+"/"+version.Version).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		R().
		SetContext(ctx).
		SetSuccessResult(&snap).
		Get("/v1/status")
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	if !resp.IsSuccessState() {
		return nil, fmt.Errorf("status request: %s", resp.Status)
	}
	return &snap, nil
}

func printStatus(w io.Writer, s *streamer.Snapshot) {
	state := green(s.State)
	if s.State != streamer.StateWatching.String() && s.State != streamer.StateReconciling.String() {
		state = red(s.State)
	}

	fmt.Fprintf(w, "%s     %s\n", cyan("state"), state)
	fmt.Fprintf(w, "%s       %s\n", cyan("run"), s.RunID)
	fmt.Fprintf(w, "%s     %s\n", cyan("watch"), s.WatchRoot)
	fmt.Fprintf(w, "%s    %s/%s\n", cyan("target"), s.Endpoint, s.Bucket)
	fmt.Fprintf(w, "%s   %s\n", cyan("started"), humanize.Time(s.StartedAt))
	fmt.Fprintf(w, "%s  %s files, %s\n", cyan("uploaded"), humanize.Comma(s.Uploaded), humanize.Bytes(uint64(s.Bytes)))
	fmt.Fprintf(w, "%s  %d vanished, %d failed\n", cyan("problems"), s.NotFound, s.Failed)
	if s.LastKey != "" {
		fmt.Fprintf(w, "%s      %s (%s)\n", cyan("last"), s.LastKey, humanize.Time(s.LastAt))
	}
	if s.InFlight != "" {
		fmt.Fprintf(w, "%s   %s\n", cyan("sending"), s.InFlight)
	}
	if s.LastError != "" {
		fmt.Fprintf(w, "%s     %s\n", cyan("error"), red(s.LastError))
	}
}
