// clean.go implements the "lifesim clean" command for pruning the event log.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/cleanup"
	"github.com/lifesim-dev/lifesim/internal/config"
	"github.com/lifesim-dev/lifesim/internal/log"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old events from the event log",
	Long: `Remove old events from log.jsonl in the data directory.

By default, removes events older than the configured cleanup.max_age_days
(default 30). Use --keep to keep only the N most recent events instead.
Use --dry-run to preview what would be removed.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var (
	keepFlag   int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N events (0 = use age-based cleanup)")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	events, err := log.NewLogger(dir)
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}

	var pruned int
	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(events, keepFlag, dryRunFlag)
	} else {
		pruned, err = cleanup.PruneByAge(events, cfg.Cleanup.MaxAgeDays, dryRunFlag)
	}
	if err != nil {
		return fmt.Errorf("pruning event log: %w", err)
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d events from %s\n", verb, pruned, events.Path())
	return nil
}
