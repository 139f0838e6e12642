package domain

import (
	"strings"
	"time"
)

// Severity is the ordinal vulnerability scale reported by the scanning subsystem.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// MaxSeverity is the upper bound of the severity scale.
const MaxSeverity Severity = 5

// Normalize clamps the severity into [SeverityInfo, MaxSeverity].
// Unknown (negative) severities are treated as informational.
func (s Severity) Normalize() Severity {
	switch {
	case s < SeverityInfo:
		return SeverityInfo
	case s > MaxSeverity:
		return MaxSeverity
	default:
		return s
	}
}

func (s Severity) String() string {
	switch s.Normalize() {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "critical"
	}
}

// Vulnerability is a scanner result attached to a single asset.
type Vulnerability struct {
	ID        string   `json:"id"`
	AssetID   string   `json:"asset_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type,omitempty"`
	Severity  Severity `json:"severity"`
	CVSSScore *float64 `json:"cvss_score,omitempty"`
}

// Asset is a discovered subdomain or endpoint together with its HTTP exposure metadata.
type Asset struct {
	ID              string          `json:"id"`
	DomainID        string          `json:"domain_id"`
	Name            string          `json:"name"`
	HTTPURL         string          `json:"http_url,omitempty"`
	HTTPStatus      int             `json:"http_status,omitempty"`
	PageTitle       string          `json:"page_title,omitempty"`
	ContentType     string          `json:"content_type,omitempty"`
	Technologies    []string        `json:"technologies,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
	EndpointCount   int             `json:"endpoint_count"`
}

// Domain is a root domain registered under an organization's project.
type Domain struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Project    string     `json:"project"`
	LastScanAt *time.Time `json:"last_scan_at,omitempty"`
}

// ScannedSince reports whether the domain has been scanned at or after t.
func (d Domain) ScannedSince(t time.Time) bool {
	return d.LastScanAt != nil && !d.LastScanAt.Before(t)
}

// Inventory is a read-only snapshot of everything discovered for one organization.
type Inventory struct {
	Organization string   `json:"organization"`
	Domains      []Domain `json:"domains"`
	Assets       []Asset  `json:"assets"`
}

// Vulnerabilities flattens the vulnerabilities of every asset in the snapshot.
func (inv *Inventory) Vulnerabilities() []Vulnerability {
	var vulns []Vulnerability
	for _, a := range inv.Assets {
		vulns = append(vulns, a.Vulnerabilities...)
	}
	return vulns
}

// NormalizeOrganization trims and validates an organization name used as a lookup key.
func NormalizeOrganization(org string) (string, error) {
	org = strings.TrimSpace(org)
	if org == "" {
		return "", ErrEmptyOrganization
	}
	return org, nil
}
