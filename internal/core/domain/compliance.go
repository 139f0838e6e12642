package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Framework identifies a supported compliance standard.
type Framework string

const (
	FrameworkSOC2     Framework = "SOC2"
	FrameworkISO27001 Framework = "ISO27001"
	FrameworkPCIDSS   Framework = "PCI_DSS"
	FrameworkGDPR     Framework = "GDPR"
)

// Frameworks lists every framework with a rule set, in display order.
var Frameworks = []Framework{FrameworkSOC2, FrameworkISO27001, FrameworkPCIDSS, FrameworkGDPR}

// Domain Errors
var (
	ErrUnsupportedFramework = errors.New("unsupported framework")
	ErrEmptyOrganization    = errors.New("organization name is required")
)

// ParseFramework validates a framework identifier. Matching is exact after trimming,
// mirroring the identifiers accepted by the CLI and API.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.TrimSpace(s))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFramework, s)
	}
	return f, nil
}

// Valid reports whether f is one of the built-in frameworks.
func (f Framework) Valid() bool {
	switch f {
	case FrameworkSOC2, FrameworkISO27001, FrameworkPCIDSS, FrameworkGDPR:
		return true
	}
	return false
}

// FindingSeverity is the severity attached to a single compliance finding.
type FindingSeverity string

const (
	FindingCritical FindingSeverity = "critical"
	FindingHigh     FindingSeverity = "high"
	FindingMedium   FindingSeverity = "medium"
	FindingLow      FindingSeverity = "low"
)

// Finding is one compliance rule outcome.
type Finding struct {
	Check       string          `json:"check"`
	Severity    FindingSeverity `json:"severity"`
	Description string          `json:"description"`
	Remediation string          `json:"remediation"`
}

// Findings groups the outcomes of one evaluation into three disjoint buckets.
// Passed is part of the shape but no built-in framework populates it.
type Findings struct {
	Passed   []Finding `json:"passed"`
	Failed   []Finding `json:"failed"`
	Warnings []Finding `json:"warnings"`
}

// NewFindings returns empty, non-nil buckets so the snapshot serializes as lists.
func NewFindings() Findings {
	return Findings{
		Passed:   []Finding{},
		Failed:   []Finding{},
		Warnings: []Finding{},
	}
}

// Counts returns the number of passed, warning and failed findings.
func (f Findings) Counts() (passed, warnings, failed int) {
	return len(f.Passed), len(f.Warnings), len(f.Failed)
}

// HasFailures reports whether any finding landed in the failed bucket.
func (f Findings) HasFailures() bool {
	return len(f.Failed) > 0
}
