package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/birka/schema/internal/ingest/sportsdb"
	"github.com/spf13/cobra"
)

var schedulePretty bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build the schedule once and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		timeout := 2 * cfg.UpstreamTimeout
		if timeout <= 0 {
			timeout = 2 * sportsdb.DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		sched, err := a.schedule.Build(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		if schedulePretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(sched)
	},
}

func init() {
	scheduleCmd.Flags().BoolVar(&schedulePretty, "pretty", false, "indent the JSON output")
}
