package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/reconrisk/internal/app"
	"github.com/lcalzada-xor/reconrisk/internal/config"
)

type rootOptions struct {
	dbPath  string
	rules   string
	debug   bool
	demo    bool
	workers int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "reconrisk",
		Short: "Risk prioritization and compliance evaluation over reconnaissance inventories",
		Long: `reconrisk scores the business criticality of discovered assets, ranks their
vulnerabilities by risk and evaluates SOC2, ISO27001, PCI_DSS and GDPR rule sets,
keeping one draft compliance report per organization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (default ~/.reconrisk/reconrisk.db)")
	flags.StringVar(&opts.rules, "rules", "", "YAML file overriding the built-in rule keywords")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.demo, "demo", false, "Use a seeded in-memory inventory instead of the database")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent organizations in batch runs (default NumCPU)")

	rootCmd.AddCommand(
		newComplianceCmd(opts),
		newRiskCmd(opts),
		newBatchCmd(opts),
		newApproveCmd(opts),
		newExpireCmd(opts),
		newReportsCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd
}

// loadConfig layers command line flags over the environment configuration.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("rules") {
		cfg.RulesPath = o.rules
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("demo") {
		cfg.DemoMode = o.demo
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}

	setupLogging(cfg.Debug)
	return cfg, nil
}

// withApp bootstraps the application for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, application *app.Application) error) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("failed to close application", "error", err)
		}
	}()

	return fn(cmd.Context(), application)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
