package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"github.com/lcalzada-xor/reconrisk/internal/telemetry"
)

const (
	sensitiveTechScore = 3.0
	defaultTechScore   = 1.0

	businessValueWeight   = 0.6
	dataSensitivityWeight = 0.4

	maxScore = 10.0
)

var tracer = telemetry.Tracer("risk")

// CriticalityScores is the pure result of scoring one asset.
type CriticalityScores struct {
	VulnScore        float64
	TechScore        float64
	BusinessValue    float64
	DataSensitivity  float64
	CriticalityScore float64
	Level            domain.CriticalityLevel
}

// CriticalityCalculator scores assets and persists one assessment per asset.
type CriticalityCalculator struct {
	repo      ports.CriticalityRepository
	sensitive map[string]struct{}
	now       func() time.Time
}

// NewCriticalityCalculator creates a calculator using the sensitive technology list from rules.
func NewCriticalityCalculator(repo ports.CriticalityRepository, rules *domain.RuleConfig) *CriticalityCalculator {
	sensitive := make(map[string]struct{})
	if rules != nil {
		for _, tech := range rules.SensitiveTechnologies {
			sensitive[strings.ToLower(strings.TrimSpace(tech))] = struct{}{}
		}
	}
	return &CriticalityCalculator{
		repo:      repo,
		sensitive: sensitive,
		now:       time.Now,
	}
}

// Score computes criticality from the asset's vulnerabilities, endpoint count and technologies.
// It has no side effects.
func (c *CriticalityCalculator) Score(asset domain.Asset) CriticalityScores {
	var s CriticalityScores

	var total float64
	for _, v := range asset.Vulnerabilities {
		total += float64(v.Severity.Normalize())
	}
	s.VulnScore = total / math.Max(float64(len(asset.Vulnerabilities)), 1)

	s.TechScore = defaultTechScore
	if c.hasSensitiveTech(asset.Technologies) {
		s.TechScore = sensitiveTechScore
	}

	endpoints := math.Max(float64(asset.EndpointCount), 0)
	s.BusinessValue = clamp(s.VulnScore+endpoints/10+s.TechScore, 0, maxScore)
	s.DataSensitivity = clamp(s.VulnScore+s.TechScore, 0, maxScore)

	s.CriticalityScore = s.BusinessValue*businessValueWeight + s.DataSensitivity*dataSensitivityWeight
	s.Level = domain.ClassifyCriticality(s.CriticalityScore)
	return s
}

// Evaluate recomputes and stores the criticality assessment of asset.
// Creation defaults are only used when the asset has never been assessed; every
// scored field is overwritten on each call.
func (c *CriticalityCalculator) Evaluate(ctx context.Context, asset domain.Asset) (*domain.AssetCriticality, error) {
	ctx, span := tracer.Start(ctx, "risk.EvaluateCriticality",
		trace.WithAttributes(attribute.String("asset.id", asset.ID)))
	defer span.End()

	record, created, err := c.repo.GetOrCreateAssetCriticality(ctx, asset.ID, domain.DefaultCriticality())
	if err != nil {
		return nil, fmt.Errorf("failed to load criticality for asset %s: %w", asset.ID, err)
	}

	scores := c.Score(asset)
	record.BusinessValue = scores.BusinessValue
	record.DataSensitivity = scores.DataSensitivity
	record.CriticalityScore = scores.CriticalityScore
	record.CriticalityLevel = scores.Level
	record.AssessedAt = c.now().UTC()
	record.AssessedBy = domain.ActorFromContext(ctx)

	if err := c.repo.SaveAssetCriticality(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save criticality for asset %s: %w", asset.ID, err)
	}

	telemetry.CriticalityEvaluations.WithLabelValues(string(record.CriticalityLevel)).Inc()
	slog.Debug("asset criticality evaluated",
		"asset", asset.ID,
		"created", created,
		"score", record.CriticalityScore,
		"level", record.CriticalityLevel)

	return record, nil
}

func (c *CriticalityCalculator) hasSensitiveTech(techs []string) bool {
	for _, tech := range techs {
		if _, ok := c.sensitive[strings.ToLower(strings.TrimSpace(tech))]; ok {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
