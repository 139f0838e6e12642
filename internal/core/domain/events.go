package domain

import "time"

// EventType identifies the kind of evaluation event pushed to subscribers.
type EventType string

const (
	EventComplianceCompleted EventType = "compliance_completed"
	EventRiskCompleted       EventType = "risk_completed"
	EventReportApproved      EventType = "report_approved"
)

// EvaluationEvent summarizes a finished evaluation for downstream consumers.
type EvaluationEvent struct {
	Type         EventType `json:"type"`
	Organization string    `json:"organization"`
	Framework    Framework `json:"framework,omitempty"`
	ReportID     string    `json:"report_id,omitempty"`
	Passed       int       `json:"passed"`
	Warnings     int       `json:"warnings"`
	Failed       int       `json:"failed"`
	Prioritized  int       `json:"prioritized"`
	Timestamp    time.Time `json:"timestamp"`
}
