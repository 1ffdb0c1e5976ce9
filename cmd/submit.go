package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/taskcore/taskmanager"
)

var (
	submitName          string
	submitPayload       string
	submitPriority      int
	submitTimeout       int
	submitMaxRetries    int
	submitRetryInterval int
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Enqueue a one-shot async task",
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "registered handler name (required)")
	submitCmd.Flags().StringVar(&submitPayload, "payload", "null", "JSON payload passed to the handler")
	submitCmd.Flags().IntVar(&submitPriority, "priority", 0, "higher runs first among ready tasks")
	submitCmd.Flags().IntVar(&submitTimeout, "timeout", 0, "per-run timeout in seconds (0 = pool default)")
	submitCmd.Flags().IntVar(&submitMaxRetries, "max-retries", 3, "retry budget before permanently_failed")
	submitCmd.Flags().IntVar(&submitRetryInterval, "retry-interval", 0, "flat retry backoff in seconds (0 = capped exponential)")
	_ = submitCmd.MarkFlagRequired("name")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if !json.Valid([]byte(submitPayload)) {
		return fmt.Errorf("--payload is not valid JSON: %s", submitPayload)
	}

	ctx := cmd.Context()
	mgr, _, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	id, err := mgr.Async(ctx, submitName, []byte(submitPayload), taskmanager.AsyncOptions{
		Priority:      submitPriority,
		Timeout:       submitTimeout,
		MaxRetries:    submitMaxRetries,
		RetryInterval: submitRetryInterval,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "submitted task %d\n", id)
	return nil
}
