package main

import (
	"context"
	"fmt"
	"os"

	"github.com/packager-dev/packager/pkg/config"
	"github.com/packager-dev/packager/pkg/log"
	"github.com/packager-dev/packager/pkg/operation"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	workdir    string
	debugLog   bool
)

// newRootCmd builds the packager command tree. The root command itself runs
// the whole task list from the config file.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packager",
		Short: "Run declarative packaging tasks",
		Long: `packager reads an ordered list of packaging tasks from a configuration
document and executes them in declaration order, stopping at the first
failure. Tasks copy filtered file trees, apply regex replacements to
files, or invoke external commands.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "packager.yaml", "config file path")
	cmd.PersistentFlags().StringVarP(&workdir, "workdir", "w", "", "base directory for relative task paths (default: the config file's directory)")
	cmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// runTasks loads the config, resolves the base directory, and hands the task
// list to the fail-fast runner.
func runTasks(ctx context.Context) error {
	ctx = setupLogging(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	rctx, err := operation.NewContext(workdir, configFile)
	if err != nil {
		return errors.Errorf("resolving base directory: %w", err)
	}

	console := log.New(os.Stdout, consoleLevel())
	console.Header(configFile)

	runner := operation.NewRunner(operation.Options{Context: rctx}, console)
	report := runner.Run(ctx, cfg.Tasks)

	summary := log.RunSummary{
		Status:      report.Status.String(),
		Total:       len(cfg.Tasks),
		Executed:    len(report.Results),
		FailedIndex: report.FailedIndex,
	}
	if err := report.Err(); err != nil {
		summary.Err = err.Error()
	}
	console.Summary(summary)

	if err := report.Err(); err != nil {
		return errors.Errorf("task %d failed: %w", report.FailedIndex, err)
	}
	return nil
}

// newValidateCmd parses and validates the config without executing anything.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate the config file without running tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			console := log.New(os.Stdout, consoleLevel())
			for i := range cfg.Tasks {
				console.Infof("  %d: %s", i, cfg.Tasks[i].String())
			}
			console.Success(fmt.Sprintf("%s: %d task(s) declared", configFile, len(cfg.Tasks)))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(versionDetails())
		},
	}
}

// setupLogging configures zerolog based on flags and embeds the logger in
// the context.
func setupLogging(ctx context.Context) context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(consoleLevel())
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}

func consoleLevel() zerolog.Level {
	if debugLog {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
