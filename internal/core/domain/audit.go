package domain

import (
	"errors"
	"time"
)

// AuditAction represents a type-safe action identifier for the audit log.
type AuditAction string

// Evaluation Audit Actions
const (
	ActionComplianceRun   AuditAction = "COMPLIANCE_RUN"
	ActionRiskRun         AuditAction = "RISK_RUN"
	ActionReportApproved  AuditAction = "REPORT_APPROVED"
	ActionReportExpired   AuditAction = "REPORT_EXPIRED"
	ActionPlanUpdated     AuditAction = "REMEDIATION_PLAN_UPDATED"
	ActionInventoryImport AuditAction = "INVENTORY_IMPORT"
	ActionInfo            AuditAction = "INFO"
)

// Domain Errors
var (
	ErrInvalidAction = errors.New("invalid audit action")
	ErrMissingActor  = errors.New("actor identification is required for auditing")
)

// AuditLog represents a record of an evaluation or report lifecycle action.
// Persistence metadata lives in the storage adapter's own model.
type AuditLog struct {
	ID        uint        `json:"id"`
	Actor     string      `json:"actor"`
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"` // organization, report ID, or file name
	Details   string      `json:"details"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewAuditLog is the designated factory for creating valid AuditLog entities.
func NewAuditLog(actor string, action AuditAction, target, details string) (*AuditLog, error) {
	if actor == "" {
		return nil, ErrMissingActor
	}

	if !isValidAction(action) {
		return nil, ErrInvalidAction
	}

	return &AuditLog{
		Actor:     actor,
		Action:    action,
		Target:    target,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, nil
}

func isValidAction(action AuditAction) bool {
	switch action {
	case ActionComplianceRun, ActionRiskRun, ActionReportApproved, ActionReportExpired,
		ActionPlanUpdated, ActionInventoryImport, ActionInfo:
		return true
	}
	return false
}
