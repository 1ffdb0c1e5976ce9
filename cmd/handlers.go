package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// builtinHandlers names the example handlers registered by serve. It is
// a static list rather than a live Registry.ListNames() call since this
// command runs without starting a scheduler against a store.
var builtinHandlers = []string{"echo", "fail_always", "sleep"}

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the handler names available to submit/schedule against a running serve process",
	RunE:  runHandlers,
}

func runHandlers(cmd *cobra.Command, args []string) error {
	for _, name := range builtinHandlers {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
