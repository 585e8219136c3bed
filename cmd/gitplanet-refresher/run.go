package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Refresh on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		every, _ := cmd.Flags().GetString("every")
		s, err := open(cmd, every)
		if err != nil {
			return err
		}
		defer s.close()
		return s.runner.Run(s.ctx)
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single refresh pass and print the report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd, "")
		if err != nil {
			return err
		}
		defer s.close()

		rep, err := s.runner.RunOnce(s.ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "listed=%d refreshed=%d failed=%d skipped=%d purged=%d ms=%d\n",
			rep.Listed, rep.Refreshed, rep.Failed, rep.Skipped, rep.Purged, rep.TotalMS)
		return nil
	},
}

func init() {
	runCmd.Flags().String("every", "", "pause between passes, e.g. 10m (default REFRESHER_EVERY)")
	rootCmd.AddCommand(runCmd, onceCmd)
}

func parseEvery(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("--every: %w", err)
	}
	if d < time.Minute {
		return 0, fmt.Errorf("--every must be at least 1m, got %s", d)
	}
	return d, nil
}
