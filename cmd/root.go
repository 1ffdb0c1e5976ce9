// Package cmd implements the taskctl command line tool: a thin client
// over package taskmanager for running the scheduler as a long-lived
// process and for submitting/inspecting tasks against a running store.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/taskcore/internal/config"
	"github.com/nextlevelbuilder/taskcore/taskmanager"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "taskctl runs and inspects the durable task manager",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (defaults apply if unset)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(handlersCmd)
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newManager opens storage and builds a Manager without starting its
// scheduler; callers that only submit/inspect tasks don't need polling.
func newManager(ctx context.Context) (*taskmanager.Manager, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg)
	mgr, err := taskmanager.New(ctx, taskmanager.Config{
		DSN:           cfg.Storage.DSN,
		PollInterval:  cfg.PollInterval(),
		MaxConcurrent: cfg.Pool.MaxConcurrent,
		ClaimBatch:    cfg.Pool.ClaimBatch,
		ShutdownGrace: cfg.ShutdownGrace(),
		Logger:        log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open task manager: %w", err)
	}
	return mgr, cfg, nil
}
