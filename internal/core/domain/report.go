package domain

import (
	"errors"
	"time"
)

// ReportStatus is the lifecycle state of a compliance report.
type ReportStatus string

const (
	ReportDraft    ReportStatus = "draft"
	ReportApproved ReportStatus = "approved"
	ReportExpired  ReportStatus = "expired"
)

// DefaultReportValidity is the validity window assigned to newly created reports.
const DefaultReportValidity = 365 * 24 * time.Hour

var (
	ErrReportNotFound    = errors.New("compliance report not found")
	ErrInvalidTransition = errors.New("invalid report status transition")
)

// ComplianceReport is the persisted result of running a framework against an organization.
// At most one draft exists per (organization, framework); reruns update it in place.
type ComplianceReport struct {
	ID              string       `json:"id"`
	Organization    string       `json:"organization"`
	Framework       Framework    `json:"framework"`
	Status          ReportStatus `json:"status"`
	GeneratedAt     time.Time    `json:"generated_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	ValidUntil      time.Time    `json:"valid_until"`
	Findings        Findings     `json:"findings"`
	RemediationPlan string       `json:"remediation_plan"`
	CreatedBy       string       `json:"created_by"`
	ApprovedBy      string       `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time   `json:"approved_at,omitempty"`
}

// Approve moves a draft report to approved.
func (r *ComplianceReport) Approve(by string, at time.Time) error {
	if r.Status != ReportDraft {
		return ErrInvalidTransition
	}
	r.Status = ReportApproved
	r.ApprovedBy = by
	r.ApprovedAt = &at
	r.UpdatedAt = at
	return nil
}

// Expire marks a report whose validity window has elapsed. Expired reports are terminal.
func (r *ComplianceReport) Expire(at time.Time) error {
	if r.Status == ReportExpired {
		return ErrInvalidTransition
	}
	r.Status = ReportExpired
	r.UpdatedAt = at
	return nil
}

// IsStale reports whether the validity window ended before now.
func (r *ComplianceReport) IsStale(now time.Time) bool {
	return r.Status != ReportExpired && r.ValidUntil.Before(now)
}
