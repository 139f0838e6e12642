package compliance

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// Fixed rule thresholds.
const (
	minInventoryAssets = 10
	scanRecencyWindow  = 90 * 24 * time.Hour
	minScanCoverage    = 0.8
)

// Check names as they appear in findings.
const (
	CheckAdminPanelExposure    = "Admin Panel Exposure"
	CheckUnencryptedComms      = "Unencrypted Communications"
	CheckHighSeverityVulns     = "High-Severity Vulnerabilities"
	CheckInventoryCompleteness = "Asset Inventory Completeness"
	CheckRegularAssessments    = "Regular Security Assessments"
	CheckCardDataExposure      = "Card Data Exposure"
	CheckPrivacyPolicy         = "Privacy Policy"
	CheckCookieConsent         = "Cookie Consent"
)

// RuleSet evaluates an inventory snapshot against one of the built-in frameworks.
// It holds only immutable keyword data and is safe for concurrent use.
type RuleSet struct {
	admin   []string
	privacy []string
	cookie  []string
	card    *regexp.Regexp
}

// NewRuleSet compiles the keyword lists of cfg.
func NewRuleSet(cfg *domain.RuleConfig) (*RuleSet, error) {
	if cfg == nil {
		cfg = &domain.RuleConfig{}
	}

	rs := &RuleSet{
		admin:   lowerAll(cfg.AdminIndicators),
		privacy: lowerAll(cfg.PrivacyIndicators),
		cookie:  lowerAll(cfg.CookieIndicators),
	}

	if len(cfg.CardKeywords) > 0 {
		re, err := regexp.Compile("(?i)" + strings.Join(cfg.CardKeywords, "|"))
		if err != nil {
			return nil, fmt.Errorf("failed to compile card keywords: %w", err)
		}
		rs.card = re
	}
	return rs, nil
}

// Evaluate runs every rule of framework over inv. Unknown frameworks fail before any rule runs.
// Evaluate never mutates inv.
func (rs *RuleSet) Evaluate(framework domain.Framework, inv *domain.Inventory, now time.Time) (domain.Findings, error) {
	if inv == nil {
		inv = &domain.Inventory{}
	}

	findings := domain.NewFindings()
	switch framework {
	case domain.FrameworkSOC2:
		rs.soc2(inv, &findings)
	case domain.FrameworkISO27001:
		rs.iso27001(inv, now, &findings)
	case domain.FrameworkPCIDSS:
		rs.pciDSS(inv, &findings)
	case domain.FrameworkGDPR:
		rs.gdpr(inv, &findings)
	default:
		return domain.Findings{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedFramework, framework)
	}
	return findings, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsAny reports whether s contains any of the lowercase indicators, ignoring case.
func containsAny(s string, indicators []string) bool {
	s = strings.ToLower(s)
	for _, ind := range indicators {
		if strings.Contains(s, ind) {
			return true
		}
	}
	return false
}

// countAssets returns how many assets satisfy match.
func countAssets(assets []domain.Asset, match func(domain.Asset) bool) int {
	n := 0
	for _, a := range assets {
		if match(a) {
			n++
		}
	}
	return n
}
