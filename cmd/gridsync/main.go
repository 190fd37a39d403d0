// Package main provides the CLI entry point for gridsync.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/gridsync-go/pkg/gridsync"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
)

var (
	configPath string
	endpoint   string
	timeout    time.Duration
	writeMode  string
	confirm    bool
	verbose    bool
	logFile    string

	opts      gridsync.Options
	logLevel  = new(slog.LevelVar)
	logger    *slog.Logger
	logCloser io.Closer
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes root and closes the log file, if one was opened.
func run(ctx context.Context, root *cobra.Command) error {
	defer func() {
		if logCloser != nil {
			logCloser.Close()
			logCloser = nil
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridsync",
		Short: "Edit a remote sheet as a grid",
		Long: `gridsync loads a table from a scripted spreadsheet web app, lets you edit it,
and writes the whole table back.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&endpoint, "endpoint", "", "Web app URL (overrides config and "+gridsync.EndpointEnv+")")
	flags.DurationVar(&timeout, "timeout", remote.DefaultTimeout, "Load timeout")
	flags.StringVar(&writeMode, "write-mode", string(remote.WriteOpaque), "Write mode: opaque or readable")
	flags.BoolVar(&confirm, "confirm", false, "Treat unconfirmed writes as failures")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	flags.StringVar(&logFile, "log-file", "", "Log file for the editor (default: discard)")

	rootCmd.AddCommand(newShowCmd(), newEditCmd(), newSetCmd(), newPullCmd(), newPushCmd())
	return rootCmd
}

// setup resolves options from the config file, the environment and flags, in that order,
// and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := gridsync.LoadOptions(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		loaded.Endpoint = endpoint
	}
	if flags.Changed("timeout") {
		loaded.Timeout = timeout
	}
	if flags.Changed("write-mode") {
		loaded.WriteMode = remote.WriteMode(writeMode)
	}
	if flags.Changed("confirm") {
		loaded.RequireConfirmation = &confirm
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	opts = loaded

	logLevel.Set(slog.LevelInfo)
	if verbose {
		logLevel.Set(slog.LevelDebug)
	}
	out, err := logOutput(cmd)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return nil
}

// logOutput is stderr, except for the full-screen editor where it is the log file or nothing.
func logOutput(cmd *cobra.Command) (io.Writer, error) {
	if cmd.Name() != "edit" {
		return cmd.ErrOrStderr(), nil
	}
	if logFile == "" {
		return io.Discard, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logCloser = f
	return f, nil
}
