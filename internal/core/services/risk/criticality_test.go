package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func testRules() *domain.RuleConfig {
	return &domain.RuleConfig{
		SensitiveTechnologies: []string{"wordpress", "joomla", "drupal", "php", "mysql"},
	}
}

func vulns(severities ...domain.Severity) []domain.Vulnerability {
	out := make([]domain.Vulnerability, len(severities))
	for i, s := range severities {
		out[i] = domain.Vulnerability{ID: string(rune('a' + i)), Severity: s}
	}
	return out
}

func TestCriticalityCalculator_Score(t *testing.T) {
	calc := NewCriticalityCalculator(nil, testRules())

	tests := []struct {
		name            string
		asset           domain.Asset
		businessValue   float64
		dataSensitivity float64
		score           float64
		level           domain.CriticalityLevel
	}{
		{
			name:            "WordPress without vulnerabilities",
			asset:           domain.Asset{Technologies: []string{"WordPress"}, EndpointCount: 20},
			businessValue:   5,
			dataSensitivity: 3,
			score:           4.2,
			level:           domain.CriticalityMedium,
		},
		{
			name:            "Bare asset",
			asset:           domain.Asset{},
			businessValue:   1,
			dataSensitivity: 1,
			score:           1,
			level:           domain.CriticalityVeryLow,
		},
		{
			name:            "Average severity",
			asset:           domain.Asset{Vulnerabilities: vulns(5, 3), Technologies: []string{"nginx"}},
			businessValue:   5,
			dataSensitivity: 5,
			score:           5,
			level:           domain.CriticalityMedium,
		},
		{
			name: "Business value clamped at ten",
			asset: domain.Asset{
				Vulnerabilities: vulns(5, 5, 5),
				Technologies:    []string{"PHP"},
				EndpointCount:   200,
			},
			businessValue:   10,
			dataSensitivity: 8,
			score:           9.2,
			level:           domain.CriticalityVeryHigh,
		},
		{
			name:            "Out of range severities are normalized",
			asset:           domain.Asset{Vulnerabilities: vulns(-1, 9)},
			businessValue:   3.5,
			dataSensitivity: 3.5,
			score:           3.5,
			level:           domain.CriticalityLow,
		},
		{
			name:            "Technology match is exact and case-insensitive",
			asset:           domain.Asset{Technologies: []string{"WordPress 6.1", " MySQL "}},
			businessValue:   3,
			dataSensitivity: 3,
			score:           3,
			level:           domain.CriticalityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := calc.Score(tt.asset)

			assert.InDelta(t, tt.businessValue, s.BusinessValue, 1e-9)
			assert.InDelta(t, tt.dataSensitivity, s.DataSensitivity, 1e-9)
			assert.InDelta(t, tt.score, s.CriticalityScore, 1e-9)
			assert.Equal(t, tt.level, s.Level)

			assert.GreaterOrEqual(t, s.CriticalityScore, 0.0)
			assert.LessOrEqual(t, s.CriticalityScore, 10.0)
		})
	}
}

func TestCriticalityCalculator_ScoreWithoutVulnerabilities(t *testing.T) {
	calc := NewCriticalityCalculator(nil, testRules())

	for endpoints := 0; endpoints <= 120; endpoints += 30 {
		s := calc.Score(domain.Asset{EndpointCount: endpoints, Technologies: []string{"drupal"}})
		assert.Zero(t, s.VulnScore)
		assert.Equal(t, sensitiveTechScore, s.TechScore)
		assert.InDelta(t, clamp(float64(endpoints)/10+3, 0, 10), s.BusinessValue, 1e-9)
		assert.InDelta(t, 3.0, s.DataSensitivity, 1e-9)
	}
}

func TestCriticalityCalculator_EvaluateUsesCreationDefaults(t *testing.T) {
	repo := new(MockCriticalityRepository)
	calc := NewCriticalityCalculator(repo, testRules())

	asset := domain.Asset{ID: "asset-1", Technologies: []string{"WordPress"}, EndpointCount: 20}
	created := &domain.AssetCriticality{ID: "crit-1", AssetID: "asset-1", BusinessValue: 5, DataSensitivity: 5}

	repo.On("GetOrCreateAssetCriticality", mock.Anything, "asset-1", domain.DefaultCriticality()).Return(created, true, nil)
	repo.On("SaveAssetCriticality", mock.Anything, mock.MatchedBy(func(c *domain.AssetCriticality) bool {
		return c.ID == "crit-1" && c.CriticalityLevel == domain.CriticalityMedium && c.AssessedBy == "analyst"
	})).Return(nil)

	ctx := domain.WithActor(context.Background(), "analyst")
	rec, err := calc.Evaluate(ctx, asset)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, rec.BusinessValue, 1e-9)
	assert.InDelta(t, 3.0, rec.DataSensitivity, 1e-9)
	assert.InDelta(t, 4.2, rec.CriticalityScore, 1e-9)
	repo.AssertExpectations(t)
}

func TestCriticalityCalculator_EvaluatePropagatesStoreErrors(t *testing.T) {
	repo := new(MockCriticalityRepository)
	calc := NewCriticalityCalculator(repo, testRules())
	storeErr := errors.New("database is locked")

	repo.On("GetOrCreateAssetCriticality", mock.Anything, "asset-1", mock.Anything).Return(nil, false, storeErr)

	_, err := calc.Evaluate(context.Background(), domain.Asset{ID: "asset-1"})
	assert.ErrorIs(t, err, storeErr)
	repo.AssertNotCalled(t, "SaveAssetCriticality", mock.Anything, mock.Anything)
}

func TestCriticalityCalculator_EvaluateIsIdempotent(t *testing.T) {
	store := newRecordStore()
	calc := NewCriticalityCalculator(store, testRules())

	asset := domain.Asset{
		ID:              "asset-1",
		Vulnerabilities: vulns(4, 2, 1),
		Technologies:    []string{"Joomla"},
		EndpointCount:   37,
	}

	first, err := calc.Evaluate(context.Background(), asset)
	require.NoError(t, err)
	second, err := calc.Evaluate(context.Background(), asset)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.BusinessValue, second.BusinessValue)
	assert.Equal(t, first.DataSensitivity, second.DataSensitivity)
	assert.Equal(t, first.CriticalityScore, second.CriticalityScore)
	assert.Equal(t, first.CriticalityLevel, second.CriticalityLevel)
	assert.Equal(t, 1, store.creates)
	assert.Len(t, store.criticalities, 1)
}
