package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// ComplianceService runs framework rule sets and manages the resulting reports.
type ComplianceService interface {
	RunComplianceCheck(ctx context.Context, organization, framework string) (*domain.ComplianceReport, domain.Findings, error)
	GetReport(ctx context.Context, id string) (*domain.ComplianceReport, error)
	ListReports(ctx context.Context, organization string) ([]domain.ComplianceReport, error)
	Approve(ctx context.Context, id string) (*domain.ComplianceReport, error)
	UpdateRemediationPlan(ctx context.Context, id, plan string) (*domain.ComplianceReport, error)
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// RiskService scores assets and ranks vulnerabilities.
type RiskService interface {
	CalculateAssetCriticality(ctx context.Context, asset domain.Asset) (*domain.AssetCriticality, error)
	PrioritizeVulnerabilities(ctx context.Context, organization string) ([]domain.RiskPrioritization, error)
	// ListPrioritizations returns the ranking stored by the last run without recomputing it.
	ListPrioritizations(ctx context.Context, organization string) ([]domain.RiskPrioritization, error)
}

// EvaluationNotifier receives a summary after each completed evaluation.
// Implementations must not block the caller for long; delivery is best-effort.
type EvaluationNotifier interface {
	NotifyEvaluation(event domain.EvaluationEvent)
}
