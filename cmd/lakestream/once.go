package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/olist-lakehouse/lakestream/internal/streamer"
)

func init() {
	rootCmd.AddCommand(newOnceCmd())
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Probe the store, upload every eligible file once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			cmd.SilenceUsage = true

			store, err := newStore(cmd.Context(), app.cfg)
			if err != nil {
				return err
			}

			summary, err := streamer.New(app.streamerConfig(), store).Once(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

// printSummary reports per file problems without turning them into a
// failing exit status.
func printSummary(w io.Writer, s *streamer.ReconcileSummary) {
	fmt.Fprintf(w, "%s %d uploaded, %d filtered", green("done"), s.Uploaded, s.Filtered)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", s.Skipped)
	}
	if s.NotFound > 0 {
		fmt.Fprintf(w, ", %d vanished", s.NotFound)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, ", %s", red(fmt.Sprintf("%d failed", s.Failed)))
	}
	fmt.Fprintf(w, " in %s\n", s.Duration.Round(time.Millisecond))
}
