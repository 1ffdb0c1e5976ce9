package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/taskcore/examples/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, polling for ready tasks until interrupted",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, _, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close()

	_ = mgr.Use("echo", handlers.Echo)
	_ = mgr.Use("fail_always", handlers.FailAlways)
	_ = mgr.Use("sleep", handlers.Sleep)

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "taskctl: scheduler started, press Ctrl+C to stop")

	<-ctx.Done()

	fmt.Fprintln(cmd.OutOrStdout(), "taskctl: shutting down")
	return mgr.Stop()
}
