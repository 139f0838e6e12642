package compliance

import (
	"fmt"
	"strings"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func (rs *RuleSet) soc2(inv *domain.Inventory, f *domain.Findings) {
	admin := countAssets(inv.Assets, func(a domain.Asset) bool {
		return containsAny(a.HTTPURL, rs.admin)
	})
	if admin > 0 {
		f.Failed = append(f.Failed, domain.Finding{
			Check:       CheckAdminPanelExposure,
			Severity:    domain.FindingHigh,
			Description: fmt.Sprintf("Found %d exposed admin panels", admin),
			Remediation: "Implement proper access controls and monitoring",
		})
	}

	plain := countAssets(inv.Assets, isPlainHTTP)
	if plain > 0 {
		f.Warnings = append(f.Warnings, domain.Finding{
			Check:       CheckUnencryptedComms,
			Severity:    domain.FindingMedium,
			Description: fmt.Sprintf("Found %d endpoints using HTTP only", plain),
			Remediation: "Implement HTTPS everywhere",
		})
	}

	high := 0
	for _, v := range inv.Vulnerabilities() {
		if v.Severity.Normalize() >= domain.SeverityHigh {
			high++
		}
	}
	if high > 0 {
		f.Failed = append(f.Failed, domain.Finding{
			Check:       CheckHighSeverityVulns,
			Severity:    domain.FindingCritical,
			Description: fmt.Sprintf("Found %d high-severity vulnerabilities", high),
			Remediation: "Immediate remediation required",
		})
	}
}

// isPlainHTTP matches assets served over http:// with no https:// reference in the URL.
func isPlainHTTP(a domain.Asset) bool {
	u := strings.ToLower(a.HTTPURL)
	return strings.HasPrefix(u, "http://") && !strings.Contains(u, "https://")
}
