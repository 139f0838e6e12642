package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/reconrisk/internal/app"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/services/batch"
)

// errFailedFindings makes the process exit with status 2.
var errFailedFindings = errors.New("failed compliance findings")

func newComplianceCmd(opts *rootOptions) *cobra.Command {
	var framework string
	var riskOnly bool

	cmd := &cobra.Command{
		Use:   "compliance <organization>",
		Short: "Run a compliance check or, with --risk-only, a risk assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org := args[0]
			out := cmd.OutOrStdout()

			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				if riskOnly {
					fmt.Fprintf(out, "Running risk assessment for %s...\n", org)
					ranked, err := application.Risk.PrioritizeVulnerabilities(ctx, org)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Risk assessment complete. Found %d prioritized vulnerabilities.\n", len(ranked))
					return nil
				}

				fmt.Fprintf(out, "Running %s compliance check for %s...\n", framework, org)
				report, findings, err := application.Compliance.RunComplianceCheck(ctx, org, framework)
				if err != nil {
					return err
				}
				return printComplianceSummary(out, report, findings)
			})
		},
	}

	cmd.Flags().StringVar(&framework, "framework", string(domain.FrameworkSOC2), "Compliance framework: SOC2, ISO27001, PCI_DSS or GDPR")
	cmd.Flags().BoolVar(&riskOnly, "risk-only", false, "Only run risk assessment")
	return cmd
}

func printComplianceSummary(out io.Writer, report *domain.ComplianceReport, findings domain.Findings) error {
	passed, warnings, failed := findings.Counts()
	fmt.Fprintf(out, "Compliance check complete: %d passed, %d warnings, %d failed\n", passed, warnings, failed)
	fmt.Fprintf(out, "Report %s (%s, valid until %s)\n", report.ID, report.Status, report.ValidUntil.Format("2006-01-02"))

	for _, f := range findings.Failed {
		fmt.Fprintf(out, "  FAIL  [%s] %s: %s\n", f.Severity, f.Check, f.Description)
	}
	for _, f := range findings.Warnings {
		fmt.Fprintf(out, "  WARN  [%s] %s: %s\n", f.Severity, f.Check, f.Description)
	}

	if failed > 0 {
		fmt.Fprintln(out, "Critical compliance issues found. Review report immediately.")
		return errFailedFindings
	}
	return nil
}

func newRiskCmd(opts *rootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "risk <organization>",
		Short: "Prioritize an organization's vulnerabilities and print the ranking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				ranked, err := application.Risk.PrioritizeVulnerabilities(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Risk assessment complete. Found %d prioritized vulnerabilities.\n", len(ranked))
				return printRanking(cmd.OutOrStdout(), ranked, top)
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Rows to print, 0 for all")
	return cmd
}

func printRanking(out io.Writer, ranked []domain.RiskPrioritization, top int) error {
	if len(ranked) == 0 {
		return nil
	}
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tPRIORITY\tSLA\tASSET\tVULNERABILITY")
	for i, r := range ranked {
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%dd\t%s\t%s\n", i+1, r.OverallRiskScore, r.PriorityLevel, r.SLADays, r.AssetName, r.VulnerabilityName)
	}
	return w.Flush()
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var orgs []string
	var framework string
	var riskOnly bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate several organizations concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(orgs) == 0 {
				return errors.New("at least one organization is required (--orgs)")
			}
			out := cmd.OutOrStdout()

			return opts.withApp(cmd, func(ctx context.Context, application *app.Application) error {
				var results []batch.Result
				if riskOnly {
					results = application.Runner.RunRisk(ctx, orgs)
				} else {
					var err error
					results, err = application.Runner.RunCompliance(ctx, orgs, framework)
					if err != nil {
						return err
					}
				}

				anyFailed := false
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, res := range results {
					switch {
					case res.Err != nil:
						fmt.Fprintf(w, "%s\terror\t%v\n", res.Organization, res.Err)
					case riskOnly:
						fmt.Fprintf(w, "%s\tok\t%d prioritized\n", res.Organization, res.Prioritized)
					default:
						fmt.Fprintf(w, "%s\t%s\t%d passed, %d warnings, %d failed\n",
							res.Organization, res.ReportID, res.Passed, res.Warnings, res.Failed)
						anyFailed = anyFailed || res.Failed > 0
					}
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if n := batch.Failures(results); n > 0 {
					return fmt.Errorf("%d of %d organizations could not be evaluated", n, len(results))
				}
				if anyFailed {
					return errFailedFindings
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&orgs, "orgs", nil, "Comma separated organizations")
	cmd.Flags().StringVar(&framework, "framework", string(domain.FrameworkSOC2), "Compliance framework")
	cmd.Flags().BoolVar(&riskOnly, "risk-only", false, "Only run risk assessments")
	return cmd
}
