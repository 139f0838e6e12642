package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/telemetry"
)

// exploitabilityFactor linearly scales the ordinal severity onto the 0-10 range.
const exploitabilityFactor = 2.0

// Engine ranks an organization's vulnerabilities by criticality-weighted risk.
type Engine struct {
	inventory  ports.InventoryRepository
	repo       ports.RiskRepository
	calculator *CriticalityCalculator
	audit      ports.AuditService
	notifier   ports.EvaluationNotifier
	now        func() time.Time
}

// NewEngine creates a risk prioritization engine.
func NewEngine(inventory ports.InventoryRepository, repo ports.RiskRepository, calculator *CriticalityCalculator) *Engine {
	return &Engine{
		inventory:  inventory,
		repo:       repo,
		calculator: calculator,
		now:        time.Now,
	}
}

// SetAuditService enables audit records for risk runs.
func (e *Engine) SetAuditService(audit ports.AuditService) {
	e.audit = audit
}

// SetNotifier registers a receiver for run summaries.
func (e *Engine) SetNotifier(n ports.EvaluationNotifier) {
	e.notifier = n
}

// RiskScores is the pure result of scoring one vulnerability.
type RiskScores struct {
	ExploitabilityScore float64
	BusinessImpact      float64
	OverallRiskScore    float64
	Level               domain.PriorityLevel
}

// ScoreVulnerability combines severity with the owning asset's criticality score.
func ScoreVulnerability(severity domain.Severity, criticalityScore float64) RiskScores {
	exploitability := float64(severity.Normalize()) * exploitabilityFactor
	impact := criticalityScore
	overall := (criticalityScore + exploitability + impact) / 3

	return RiskScores{
		ExploitabilityScore: exploitability,
		BusinessImpact:      impact,
		OverallRiskScore:    overall,
		Level:               domain.ClassifyPriority(overall),
	}
}

// CalculateAssetCriticality evaluates a single asset.
func (e *Engine) CalculateAssetCriticality(ctx context.Context, asset domain.Asset) (*domain.AssetCriticality, error) {
	return e.calculator.Evaluate(ctx, asset)
}

// PrioritizeVulnerabilities recomputes the prioritization of every vulnerability belonging
// to organization and returns them ordered by overall risk score, highest first.
// Ordering among equal scores is unspecified.
func (e *Engine) PrioritizeVulnerabilities(ctx context.Context, organization string) ([]domain.RiskPrioritization, error) {
	org, err := domain.NormalizeOrganization(organization)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "risk.Prioritize",
		trace.WithAttributes(attribute.String("organization", org)))
	defer span.End()

	start := e.now()
	defer func() {
		telemetry.EvaluationDuration.WithLabelValues("risk").Observe(e.now().Sub(start).Seconds())
	}()

	inv, err := e.inventory.GetInventory(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory for %s: %w", org, err)
	}

	var results []domain.RiskPrioritization
	for _, asset := range inv.Assets {
		if len(asset.Vulnerabilities) == 0 {
			continue
		}

		// One assessment per asset per run; it is identical for every vulnerability of the asset.
		crit, err := e.calculator.Evaluate(ctx, asset)
		if err != nil {
			return nil, err
		}

		for _, vuln := range asset.Vulnerabilities {
			p, err := e.prioritize(ctx, asset, vuln, crit)
			if err != nil {
				return nil, err
			}
			results = append(results, *p)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].OverallRiskScore > results[j].OverallRiskScore
	})

	span.SetAttributes(attribute.Int("vulnerabilities", len(results)))
	slog.Info("risk prioritization complete", "organization", org, "vulnerabilities", len(results))

	e.record(ctx, org, len(results))
	return results, nil
}

// ListPrioritizations returns the stored ranking of organization.
func (e *Engine) ListPrioritizations(ctx context.Context, organization string) ([]domain.RiskPrioritization, error) {
	org, err := domain.NormalizeOrganization(organization)
	if err != nil {
		return nil, err
	}
	ranked, err := e.repo.ListRiskPrioritizations(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to list prioritizations for %s: %w", org, err)
	}
	return ranked, nil
}

func (e *Engine) prioritize(ctx context.Context, asset domain.Asset, vuln domain.Vulnerability, crit *domain.AssetCriticality) (*domain.RiskPrioritization, error) {
	p, _, err := e.repo.GetOrCreateRiskPrioritization(ctx, vuln.ID, domain.DefaultRisk(crit.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to load prioritization for vulnerability %s: %w", vuln.ID, err)
	}

	scores := ScoreVulnerability(vuln.Severity, crit.CriticalityScore)
	p.VulnerabilityName = vuln.Name
	p.AssetID = asset.ID
	p.AssetName = asset.Name
	p.AssetCriticalityID = crit.ID
	p.CriticalityScore = crit.CriticalityScore
	p.ExploitabilityScore = scores.ExploitabilityScore
	p.BusinessImpact = scores.BusinessImpact
	p.OverallRiskScore = scores.OverallRiskScore
	p.PriorityLevel = scores.Level
	p.CalculatedAt = e.now().UTC()

	if err := e.repo.SaveRiskPrioritization(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save prioritization for vulnerability %s: %w", vuln.ID, err)
	}

	telemetry.RiskPrioritizations.WithLabelValues(string(p.PriorityLevel)).Inc()
	return p, nil
}

func (e *Engine) record(ctx context.Context, org string, count int) {
	if e.audit != nil {
		if err := e.audit.Log(ctx, domain.ActionRiskRun, org, fmt.Sprintf("%d vulnerabilities prioritized", count)); err != nil {
			slog.Warn("failed to audit risk run", "organization", org, "error", err)
		}
	}
	if e.notifier != nil {
		e.notifier.NotifyEvaluation(domain.EvaluationEvent{
			Type:         domain.EventRiskCompleted,
			Organization: org,
			Prioritized:  count,
			Timestamp:    e.now().UTC(),
		})
	}
}

var _ ports.RiskService = (*Engine)(nil)
