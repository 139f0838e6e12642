package compliance

import (
	"fmt"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func (rs *RuleSet) pciDSS(inv *domain.Inventory, f *domain.Findings) {
	if rs.card == nil {
		return
	}

	exposed := countAssets(inv.Assets, func(a domain.Asset) bool {
		return rs.card.MatchString(a.PageTitle) ||
			rs.card.MatchString(a.ContentType) ||
			rs.card.MatchString(a.HTTPURL)
	})
	if exposed > 0 {
		f.Failed = append(f.Failed, domain.Finding{
			Check:       CheckCardDataExposure,
			Severity:    domain.FindingCritical,
			Description: fmt.Sprintf("Potential card data exposure in %d endpoints", exposed),
			Remediation: "Immediate investigation and remediation required",
		})
	}
}
