package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusID int64

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a single task's state, or overall counts by status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Int64Var(&statusID, "id", 0, "task ID to inspect; omit to show overall counts")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if statusID != 0 {
		t, err := mgr.GetTask(ctx, statusID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "id=%d name=%s type=%s status=%s retry=%d/%d next_run_time=%d\n",
			t.ID, t.Name, t.Type, t.Status, t.RetryCount, t.MaxRetries, t.NextRunTime)
		if t.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", t.Error)
		}
		return nil
	}

	stats, err := mgr.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "in_flight=%d max_concurrent=%d\n", stats.InFlight, stats.MaxConcurrent)
	for status, count := range stats.Counts {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d\n", status, count)
	}
	return nil
}
