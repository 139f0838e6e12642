package domain

import "time"

// PriorityLevel is the remediation priority tier of a vulnerability.
type PriorityLevel string

const (
	PriorityInfo     PriorityLevel = "info"
	PriorityLow      PriorityLevel = "low"
	PriorityMedium   PriorityLevel = "medium"
	PriorityHigh     PriorityLevel = "high"
	PriorityCritical PriorityLevel = "critical"
)

// ClassifyPriority maps an overall risk score onto its tier. Boundaries belong to the upper tier.
func ClassifyPriority(score float64) PriorityLevel {
	switch {
	case score >= 8:
		return PriorityCritical
	case score >= 6:
		return PriorityHigh
	case score >= 4:
		return PriorityMedium
	case score >= 2:
		return PriorityLow
	default:
		return PriorityInfo
	}
}

// RiskPrioritization is the one-to-one risk assessment of a vulnerability.
type RiskPrioritization struct {
	ID                  string        `json:"id"`
	VulnerabilityID     string        `json:"vulnerability_id"`
	VulnerabilityName   string        `json:"vulnerability_name,omitempty"`
	AssetID             string        `json:"asset_id"`
	AssetName           string        `json:"asset_name,omitempty"`
	AssetCriticalityID  string        `json:"asset_criticality_id"`
	CriticalityScore    float64       `json:"criticality_score"`
	ExploitabilityScore float64       `json:"exploitability_score"`
	BusinessImpact      float64       `json:"business_impact"`
	OverallRiskScore    float64       `json:"overall_risk_score"`
	PriorityLevel       PriorityLevel `json:"priority_level"`
	RemediationEffort   string        `json:"remediation_effort"`
	SLADays             int           `json:"sla_days"`
	CalculatedAt        time.Time     `json:"calculated_at"`
}

// RiskDefaults are applied only when a prioritization record is first created.
type RiskDefaults struct {
	AssetCriticalityID string
	RemediationEffort  string
	SLADays            int
}

// DefaultRisk returns the creation defaults for a prioritization linked to the given assessment.
func DefaultRisk(assetCriticalityID string) RiskDefaults {
	return RiskDefaults{
		AssetCriticalityID: assetCriticalityID,
		RemediationEffort:  "medium",
		SLADays:            30,
	}
}
