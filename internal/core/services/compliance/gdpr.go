package compliance

import (
	"fmt"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func (rs *RuleSet) gdpr(inv *domain.Inventory, f *domain.Findings) {
	privacy := countAssets(inv.Assets, func(a domain.Asset) bool {
		return containsAny(a.HTTPURL, rs.privacy)
	})
	if privacy == 0 {
		f.Failed = append(f.Failed, domain.Finding{
			Check:       CheckPrivacyPolicy,
			Severity:    domain.FindingHigh,
			Description: fmt.Sprintf("No privacy policy page found among %d assets", len(inv.Assets)),
			Remediation: "Publish comprehensive privacy policy",
		})
	}

	cookie := countAssets(inv.Assets, func(a domain.Asset) bool {
		return containsAny(a.HTTPURL, rs.cookie)
	})
	if cookie == 0 {
		f.Warnings = append(f.Warnings, domain.Finding{
			Check:       CheckCookieConsent,
			Severity:    domain.FindingMedium,
			Description: fmt.Sprintf("No cookie policy page found among %d assets", len(inv.Assets)),
			Remediation: "Implement cookie consent mechanism",
		})
	}
}
