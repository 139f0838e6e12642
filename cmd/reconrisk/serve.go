package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/reconrisk/internal/app"
	"github.com/lcalzada-xor/reconrisk/internal/telemetry"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <inventory-file>",
		Short: "Import a YAML or JSON inventory, updating previously imported records in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				sum, err := application.Importer.LoadFromFile(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d domains, %d assets, %d vulnerabilities\n",
					sum.Organization, sum.Domains, sum.Assets, sum.Vulnerabilities)
				return nil
			})
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var trace bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, metrics and the evaluation event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			// Initialize Tracing
			if trace {
				shutdownTracer, err := telemetry.InitTracer(os.Stderr)
				if err != nil {
					slog.Error("Failed to init tracer", "error", err)
				} else {
					defer func() {
						if err := shutdownTracer(context.Background()); err != nil {
							slog.Error("Failed to shutdown tracer", "error", err)
						}
					}()
				}
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			return application.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print OpenTelemetry spans to stderr")
	return cmd
}
