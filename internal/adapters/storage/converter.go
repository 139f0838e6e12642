package storage

import (
	"encoding/json"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func domainToModel(d domain.Domain) DomainModel {
	return DomainModel{
		ID:         d.ID,
		Name:       d.Name,
		Project:    d.Project,
		LastScanAt: d.LastScanAt,
	}
}

func domainFromModel(m DomainModel) domain.Domain {
	return domain.Domain{
		ID:         m.ID,
		Name:       m.Name,
		Project:    m.Project,
		LastScanAt: m.LastScanAt,
	}
}

// assetToModel converts an asset without its associations.
func assetToModel(a domain.Asset) AssetModel {
	return AssetModel{
		ID:            a.ID,
		DomainID:      a.DomainID,
		Name:          a.Name,
		HTTPURL:       a.HTTPURL,
		HTTPStatus:    a.HTTPStatus,
		PageTitle:     a.PageTitle,
		ContentType:   a.ContentType,
		EndpointCount: a.EndpointCount,
	}
}

func assetFromModel(m AssetModel) domain.Asset {
	asset := domain.Asset{
		ID:            m.ID,
		DomainID:      m.DomainID,
		Name:          m.Name,
		HTTPURL:       m.HTTPURL,
		HTTPStatus:    m.HTTPStatus,
		PageTitle:     m.PageTitle,
		ContentType:   m.ContentType,
		EndpointCount: m.EndpointCount,
	}
	for _, t := range m.Technologies {
		asset.Technologies = append(asset.Technologies, t.Name)
	}
	for _, v := range m.Vulnerabilities {
		asset.Vulnerabilities = append(asset.Vulnerabilities, vulnerabilityFromModel(v))
	}
	return asset
}

func vulnerabilityToModel(assetID string, v domain.Vulnerability) VulnerabilityModel {
	return VulnerabilityModel{
		ID:        v.ID,
		AssetID:   assetID,
		Name:      v.Name,
		Type:      v.Type,
		Severity:  int(v.Severity),
		CVSSScore: v.CVSSScore,
	}
}

func vulnerabilityFromModel(m VulnerabilityModel) domain.Vulnerability {
	return domain.Vulnerability{
		ID:        m.ID,
		AssetID:   m.AssetID,
		Name:      m.Name,
		Type:      m.Type,
		Severity:  domain.Severity(m.Severity),
		CVSSScore: m.CVSSScore,
	}
}

func criticalityToModel(c domain.AssetCriticality) CriticalityModel {
	return CriticalityModel{
		ID:               c.ID,
		AssetID:          c.AssetID,
		BusinessValue:    c.BusinessValue,
		DataSensitivity:  c.DataSensitivity,
		CriticalityScore: c.CriticalityScore,
		CriticalityLevel: string(c.CriticalityLevel),
		AssessedAt:       c.AssessedAt,
		AssessedBy:       c.AssessedBy,
	}
}

func criticalityFromModel(m CriticalityModel) *domain.AssetCriticality {
	return &domain.AssetCriticality{
		ID:               m.ID,
		AssetID:          m.AssetID,
		BusinessValue:    m.BusinessValue,
		DataSensitivity:  m.DataSensitivity,
		CriticalityScore: m.CriticalityScore,
		CriticalityLevel: domain.CriticalityLevel(m.CriticalityLevel),
		AssessedAt:       m.AssessedAt,
		AssessedBy:       m.AssessedBy,
	}
}

func riskToModel(r domain.RiskPrioritization) RiskModel {
	return RiskModel{
		ID:                  r.ID,
		VulnerabilityID:     r.VulnerabilityID,
		VulnerabilityName:   r.VulnerabilityName,
		AssetID:             r.AssetID,
		AssetName:           r.AssetName,
		AssetCriticalityID:  r.AssetCriticalityID,
		CriticalityScore:    r.CriticalityScore,
		ExploitabilityScore: r.ExploitabilityScore,
		BusinessImpact:      r.BusinessImpact,
		OverallRiskScore:    r.OverallRiskScore,
		PriorityLevel:       string(r.PriorityLevel),
		RemediationEffort:   r.RemediationEffort,
		SLADays:             r.SLADays,
		CalculatedAt:        r.CalculatedAt,
	}
}

func riskFromModel(m RiskModel) *domain.RiskPrioritization {
	return &domain.RiskPrioritization{
		ID:                  m.ID,
		VulnerabilityID:     m.VulnerabilityID,
		VulnerabilityName:   m.VulnerabilityName,
		AssetID:             m.AssetID,
		AssetName:           m.AssetName,
		AssetCriticalityID:  m.AssetCriticalityID,
		CriticalityScore:    m.CriticalityScore,
		ExploitabilityScore: m.ExploitabilityScore,
		BusinessImpact:      m.BusinessImpact,
		OverallRiskScore:    m.OverallRiskScore,
		PriorityLevel:       domain.PriorityLevel(m.PriorityLevel),
		RemediationEffort:   m.RemediationEffort,
		SLADays:             m.SLADays,
		CalculatedAt:        m.CalculatedAt,
	}
}

func reportToModel(r domain.ComplianceReport) (ReportModel, error) {
	findings, err := json.Marshal(r.Findings)
	if err != nil {
		return ReportModel{}, err
	}
	return ReportModel{
		ID:              r.ID,
		Organization:    r.Organization,
		Framework:       string(r.Framework),
		Status:          string(r.Status),
		GeneratedAt:     r.GeneratedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		ValidUntil:      r.ValidUntil.UTC(),
		Findings:        string(findings),
		RemediationPlan: r.RemediationPlan,
		CreatedBy:       r.CreatedBy,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      utcPtr(r.ApprovedAt),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func reportFromModel(m ReportModel) (*domain.ComplianceReport, error) {
	findings := domain.NewFindings()
	if m.Findings != "" {
		if err := json.Unmarshal([]byte(m.Findings), &findings); err != nil {
			return nil, err
		}
	}
	if findings.Passed == nil {
		findings.Passed = []domain.Finding{}
	}
	if findings.Failed == nil {
		findings.Failed = []domain.Finding{}
	}
	if findings.Warnings == nil {
		findings.Warnings = []domain.Finding{}
	}
	return &domain.ComplianceReport{
		ID:              m.ID,
		Organization:    m.Organization,
		Framework:       domain.Framework(m.Framework),
		Status:          domain.ReportStatus(m.Status),
		GeneratedAt:     m.GeneratedAt,
		UpdatedAt:       m.UpdatedAt,
		ValidUntil:      m.ValidUntil,
		Findings:        findings,
		RemediationPlan: m.RemediationPlan,
		CreatedBy:       m.CreatedBy,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
	}, nil
}

func auditToModel(l domain.AuditLog) AuditLogModel {
	return AuditLogModel{
		ID:        l.ID,
		Actor:     l.Actor,
		Action:    string(l.Action),
		Target:    l.Target,
		Details:   l.Details,
		Timestamp: l.Timestamp,
	}
}

func auditFromModel(m AuditLogModel) domain.AuditLog {
	return domain.AuditLog{
		ID:        m.ID,
		Actor:     m.Actor,
		Action:    domain.AuditAction(m.Action),
		Target:    m.Target,
		Details:   m.Details,
		Timestamp: m.Timestamp,
	}
}
