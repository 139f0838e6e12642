package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/reconrisk/internal/app"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func newApproveCmd(opts *rootOptions) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "approve <report-id>",
		Short: "Approve a draft compliance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				report, err := application.Compliance.Approve(domain.WithActor(ctx, actor), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report %s approved by %s\n", report.ID, report.ApprovedBy)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", currentUser(), "Name recorded as approver")
	return cmd
}

func newExpireCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark reports past their validity window as expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				n, err := application.Compliance.ExpireStale(ctx, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d reports expired\n", n)
				return nil
			})
		},
	}
}

func newReportsCmd(opts *rootOptions) *cobra.Command {
	var organization string

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List compliance reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				reports, err := application.Compliance.ListReports(ctx, organization)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tORGANIZATION\tFRAMEWORK\tSTATUS\tFAILED\tWARNINGS\tVALID UNTIL")
				for _, r := range reports {
					_, warnings, failed := r.Findings.Counts()
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Organization, r.Framework, r.Status,
						failed, warnings, r.ValidUntil.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&organization, "organization", "", "Only list reports of this organization")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string
	var riskOrg string

	cmd := &cobra.Command{
		Use:   "export [report-id]",
		Short: "Export a compliance report, or with --risk an organization's risk ranking, as PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (riskOrg == "") {
				return fmt.Errorf("pass either a report id or --risk <organization>")
			}

			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				var data []byte
				var err error
				target := output

				if riskOrg != "" {
					ranked, lerr := application.Risk.ListPrioritizations(ctx, riskOrg)
					if lerr != nil {
						return lerr
					}
					data, err = application.Exporter.ExportRiskRanking(riskOrg, ranked)
					if target == "" {
						target = fmt.Sprintf("risk_%s.pdf", time.Now().Format("20060102"))
					}
				} else {
					report, gerr := application.Compliance.GetReport(ctx, args[0])
					if gerr != nil {
						return gerr
					}
					data, err = application.Exporter.ExportComplianceReport(report)
					if target == "" {
						target = report.ID + ".pdf"
					}
				}
				if err != nil {
					return fmt.Errorf("failed to render PDF: %w", err)
				}

				if err := os.WriteFile(target, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", target, len(data))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	cmd.Flags().StringVar(&riskOrg, "risk", "", "Export the stored risk ranking of this organization")
	return cmd
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return domain.SystemActor
}
