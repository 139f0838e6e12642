package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/telemetry"
)

var tracer = telemetry.Tracer("compliance")

// Engine runs framework rule sets against an organization's inventory and keeps the
// resulting reports.
type Engine struct {
	inventory ports.InventoryRepository
	reports   ports.ReportRepository
	rules     *RuleSet
	audit     ports.AuditService
	notifier  ports.EvaluationNotifier
	validity  time.Duration
	now       func() time.Time
}

// NewEngine creates a compliance engine with the default report validity.
func NewEngine(inventory ports.InventoryRepository, reports ports.ReportRepository, rules *RuleSet) *Engine {
	return &Engine{
		inventory: inventory,
		reports:   reports,
		rules:     rules,
		validity:  domain.DefaultReportValidity,
		now:       time.Now,
	}
}

// SetAuditService enables audit records for runs and report transitions.
func (e *Engine) SetAuditService(audit ports.AuditService) {
	e.audit = audit
}

// SetNotifier registers a receiver for run summaries.
func (e *Engine) SetNotifier(n ports.EvaluationNotifier) {
	e.notifier = n
}

// SetValidity overrides the validity window given to newly created reports.
func (e *Engine) SetValidity(d time.Duration) {
	if d > 0 {
		e.validity = d
	}
}

// RunComplianceCheck implements ports.ComplianceService.
func (e *Engine) RunComplianceCheck(ctx context.Context, organization, framework string) (*domain.ComplianceReport, domain.Findings, error) {
	return e.Run(ctx, organization, framework)
}

// Run evaluates framework against the organization's current inventory and stores the findings
// on the organization's draft report, creating the draft when none exists.
// Nothing is written when the framework is unknown or the inventory cannot be read.
func (e *Engine) Run(ctx context.Context, organization, framework string) (*domain.ComplianceReport, domain.Findings, error) {
	fw, err := domain.ParseFramework(framework)
	if err != nil {
		return nil, domain.Findings{}, err
	}
	org, err := domain.NormalizeOrganization(organization)
	if err != nil {
		return nil, domain.Findings{}, err
	}

	ctx, span := tracer.Start(ctx, "compliance.Run", trace.WithAttributes(
		attribute.String("organization", org),
		attribute.String("framework", string(fw)),
	))
	defer span.End()

	start := e.now()
	defer func() {
		telemetry.EvaluationDuration.WithLabelValues("compliance").Observe(e.now().Sub(start).Seconds())
	}()

	report, findings, err := e.run(ctx, org, fw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.ComplianceRuns.WithLabelValues(string(fw), "error").Inc()
		return nil, domain.Findings{}, err
	}

	passed, warnings, failed := findings.Counts()
	outcome := "clean"
	if findings.HasFailures() {
		outcome = "failed"
	}
	telemetry.ComplianceRuns.WithLabelValues(string(fw), outcome).Inc()
	telemetry.FindingsTotal.WithLabelValues(string(fw), "passed").Add(float64(passed))
	telemetry.FindingsTotal.WithLabelValues(string(fw), "warnings").Add(float64(warnings))
	telemetry.FindingsTotal.WithLabelValues(string(fw), "failed").Add(float64(failed))

	slog.Info("compliance run complete",
		"organization", org,
		"framework", fw,
		"report", report.ID,
		"passed", passed,
		"warnings", warnings,
		"failed", failed)

	e.logAudit(ctx, domain.ActionComplianceRun, report.ID,
		fmt.Sprintf("%s %s: %d passed, %d warnings, %d failed", org, fw, passed, warnings, failed))
	e.notify(domain.EvaluationEvent{
		Type:         domain.EventComplianceCompleted,
		Organization: org,
		Framework:    fw,
		ReportID:     report.ID,
		Passed:       passed,
		Warnings:     warnings,
		Failed:       failed,
	})

	return report, findings, nil
}

func (e *Engine) run(ctx context.Context, org string, fw domain.Framework) (*domain.ComplianceReport, domain.Findings, error) {
	inv, err := e.inventory.GetInventory(ctx, org)
	if err != nil {
		return nil, domain.Findings{}, fmt.Errorf("failed to fetch inventory for %s: %w", org, err)
	}

	now := e.now().UTC()
	findings, err := e.rules.Evaluate(fw, inv, now)
	if err != nil {
		return nil, domain.Findings{}, err
	}

	report, err := e.reports.FindDraftReport(ctx, org, fw)
	if err != nil {
		return nil, domain.Findings{}, fmt.Errorf("failed to look up draft report: %w", err)
	}
	if report == nil {
		report = &domain.ComplianceReport{
			ID:           uuid.New().String(),
			Organization: org,
			Framework:    fw,
			Status:       domain.ReportDraft,
			GeneratedAt:  now,
			ValidUntil:   now.Add(e.validity),
			CreatedBy:    domain.ActorFromContext(ctx),
		}
	}

	report.Findings = findings
	report.UpdatedAt = now

	if err := e.reports.SaveReport(ctx, report); err != nil {
		return nil, domain.Findings{}, fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return report, findings, nil
}

// GetReport returns a stored report or domain.ErrReportNotFound.
func (e *Engine) GetReport(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	return e.reports.GetReport(ctx, id)
}

// ListReports returns the reports of organization, or every report when it is empty.
func (e *Engine) ListReports(ctx context.Context, organization string) ([]domain.ComplianceReport, error) {
	reports, err := e.reports.ListReports(ctx, organization)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Approve moves a draft report to approved on behalf of the context actor.
func (e *Engine) Approve(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	report, err := e.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := domain.ActorFromContext(ctx)
	if err := report.Approve(actor, e.now().UTC()); err != nil {
		return nil, fmt.Errorf("cannot approve %s report %s: %w", report.Status, id, err)
	}
	if err := e.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report %s: %w", id, err)
	}

	slog.Info("compliance report approved", "report", id, "by", actor)
	e.logAudit(ctx, domain.ActionReportApproved, id, fmt.Sprintf("%s %s", report.Organization, report.Framework))
	e.notify(domain.EvaluationEvent{
		Type:         domain.EventReportApproved,
		Organization: report.Organization,
		Framework:    report.Framework,
		ReportID:     report.ID,
	})
	return report, nil
}

// UpdateRemediationPlan replaces the free-text plan of a report that has not expired.
func (e *Engine) UpdateRemediationPlan(ctx context.Context, id, plan string) (*domain.ComplianceReport, error) {
	report, err := e.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == domain.ReportExpired {
		return nil, fmt.Errorf("cannot edit expired report %s: %w", id, domain.ErrInvalidTransition)
	}

	report.RemediationPlan = plan
	report.UpdatedAt = e.now().UTC()
	if err := e.reports.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report %s: %w", id, err)
	}

	e.logAudit(ctx, domain.ActionPlanUpdated, id, fmt.Sprintf("%d characters", len(plan)))
	return report, nil
}

// ExpireStale expires every report whose validity window ended before now and
// returns how many were changed.
func (e *Engine) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	stale, err := e.reports.ListStaleReports(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale reports: %w", err)
	}

	expired := 0
	for i := range stale {
		r := &stale[i]
		if err := r.Expire(now); err != nil {
			continue
		}
		if err := e.reports.SaveReport(ctx, r); err != nil {
			return expired, fmt.Errorf("failed to expire report %s: %w", r.ID, err)
		}
		expired++
		e.logAudit(ctx, domain.ActionReportExpired, r.ID, fmt.Sprintf("valid until %s", r.ValidUntil.Format(time.RFC3339)))
	}

	if expired > 0 {
		slog.Info("expired stale compliance reports", "count", expired)
	}
	return expired, nil
}

func (e *Engine) logAudit(ctx context.Context, action domain.AuditAction, target, details string) {
	if e.audit == nil {
		return
	}
	if err := e.audit.Log(ctx, action, target, details); err != nil {
		slog.Warn("failed to write audit log", "action", action, "target", target, "error", err)
	}
}

func (e *Engine) notify(event domain.EvaluationEvent) {
	if e.notifier == nil {
		return
	}
	event.Timestamp = e.now().UTC()
	e.notifier.NotifyEvaluation(event)
}

var _ ports.ComplianceService = (*Engine)(nil)
