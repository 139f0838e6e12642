package batch

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
)

// Result is the outcome of one organization's run. Err is set when that run failed.
type Result struct {
	Organization string           `json:"organization"`
	Framework    domain.Framework `json:"framework,omitempty"`
	ReportID     string           `json:"report_id,omitempty"`
	Passed       int              `json:"passed"`
	Warnings     int              `json:"warnings"`
	Failed       int              `json:"failed"`
	Prioritized  int              `json:"prioritized"`
	Err          error            `json:"-"`
}

// Runner fans evaluations out across organizations.
// Each organization is handled by exactly one worker per call.
type Runner struct {
	compliance ports.ComplianceService
	risk       ports.RiskService
	locks      *KeyedLocker
	workers    int
	timeout    time.Duration
}

// NewRunner creates a runner. A nil locker gets a private one.
func NewRunner(compliance ports.ComplianceService, risk ports.RiskService, locks *KeyedLocker) *Runner {
	if locks == nil {
		locks = NewKeyedLocker()
	}
	return &Runner{
		compliance: compliance,
		risk:       risk,
		locks:      locks,
		workers:    runtime.NumCPU(),
	}
}

// SetWorkers bounds the number of organizations evaluated concurrently.
func (r *Runner) SetWorkers(n int) {
	if n > 0 {
		r.workers = n
	}
}

// SetTimeout bounds each organization's run. Zero disables the limit.
func (r *Runner) SetTimeout(d time.Duration) {
	r.timeout = d
}

// RunCompliance evaluates framework for every organization. The framework is validated once
// up front; per-organization failures are reported in the results without stopping the rest.
// Results follow the order of the de-duplicated input.
func (r *Runner) RunCompliance(ctx context.Context, organizations []string, framework string) ([]Result, error) {
	fw, err := domain.ParseFramework(framework)
	if err != nil {
		return nil, err
	}

	return r.fanOut(ctx, organizations, func(ctx context.Context, org string) Result {
		res := Result{Organization: org, Framework: fw}

		unlock, err := r.locks.Lock(ctx, ComplianceKey(org, fw))
		if err != nil {
			res.Err = err
			return res
		}
		defer unlock()

		report, findings, err := r.compliance.RunComplianceCheck(ctx, org, string(fw))
		if err != nil {
			res.Err = err
			return res
		}
		res.ReportID = report.ID
		res.Passed, res.Warnings, res.Failed = findings.Counts()
		return res
	}), nil
}

// RunRisk prioritizes the vulnerabilities of every organization.
func (r *Runner) RunRisk(ctx context.Context, organizations []string) []Result {
	return r.fanOut(ctx, organizations, func(ctx context.Context, org string) Result {
		res := Result{Organization: org}

		unlock, err := r.locks.Lock(ctx, RiskKey(org))
		if err != nil {
			res.Err = err
			return res
		}
		defer unlock()

		ranked, err := r.risk.PrioritizeVulnerabilities(ctx, org)
		if err != nil {
			res.Err = err
			return res
		}
		res.Prioritized = len(ranked)
		return res
	})
}

func (r *Runner) fanOut(ctx context.Context, organizations []string, run func(context.Context, string) Result) []Result {
	orgs := uniqueOrganizations(organizations)
	results := make([]Result, len(orgs))

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, org := range orgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Organization: org, Err: err}
				return nil
			}

			runCtx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}

			start := time.Now()
			results[i] = run(runCtx, org)
			if results[i].Err != nil {
				slog.Warn("batch evaluation failed", "organization", org, "error", results[i].Err)
			} else {
				slog.Debug("batch evaluation complete", "organization", org, "duration", time.Since(start))
			}
			return nil
		})
	}
	g.Wait()

	return results
}

// uniqueOrganizations trims names and drops blanks and case-insensitive duplicates.
func uniqueOrganizations(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, org := range in {
		org = strings.TrimSpace(org)
		if org == "" {
			continue
		}
		key := strings.ToLower(org)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, org)
	}
	return out
}

// Failures counts results that carry an error.
func Failures(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
