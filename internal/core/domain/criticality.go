package domain

import "time"

// CriticalityLevel is the five-tier classification of an asset's criticality score.
type CriticalityLevel string

const (
	CriticalityVeryLow  CriticalityLevel = "very_low"
	CriticalityLow      CriticalityLevel = "low"
	CriticalityMedium   CriticalityLevel = "medium"
	CriticalityHigh     CriticalityLevel = "high"
	CriticalityVeryHigh CriticalityLevel = "very_high"
)

// ClassifyCriticality maps a criticality score onto its tier. Boundaries belong to the upper tier.
func ClassifyCriticality(score float64) CriticalityLevel {
	switch {
	case score >= 8:
		return CriticalityVeryHigh
	case score >= 6:
		return CriticalityHigh
	case score >= 4:
		return CriticalityMedium
	case score >= 2:
		return CriticalityLow
	default:
		return CriticalityVeryLow
	}
}

// AssetCriticality is the one-to-one criticality assessment of an asset.
type AssetCriticality struct {
	ID               string           `json:"id"`
	AssetID          string           `json:"asset_id"`
	BusinessValue    float64          `json:"business_value"`
	DataSensitivity  float64          `json:"data_sensitivity"`
	CriticalityScore float64          `json:"criticality_score"`
	CriticalityLevel CriticalityLevel `json:"criticality_level"`
	AssessedAt       time.Time        `json:"assessed_at"`
	AssessedBy       string           `json:"assessed_by,omitempty"`
}

// CriticalityDefaults are applied only when an assessment record is first created.
type CriticalityDefaults struct {
	BusinessValue   float64
	DataSensitivity float64
}

// DefaultCriticality returns the creation defaults for a new assessment.
func DefaultCriticality() CriticalityDefaults {
	return CriticalityDefaults{BusinessValue: 5, DataSensitivity: 5}
}
