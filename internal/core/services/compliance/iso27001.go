package compliance

import (
	"fmt"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func (rs *RuleSet) iso27001(inv *domain.Inventory, now time.Time, f *domain.Findings) {
	if n := len(inv.Assets); n < minInventoryAssets {
		desc := fmt.Sprintf("Only %d assets discovered across %d domains, inventory may be incomplete", n, len(inv.Domains))
		f.Warnings = append(f.Warnings, domain.Finding{
			Check:       CheckInventoryCompleteness,
			Severity:    domain.FindingMedium,
			Description: desc,
			Remediation: "Perform comprehensive asset discovery",
		})
	}

	cutoff := now.Add(-scanRecencyWindow)
	recent := 0
	for _, d := range inv.Domains {
		if d.ScannedSince(cutoff) {
			recent++
		}
	}

	// With no domains the coverage requirement is trivially met.
	if float64(recent) < float64(len(inv.Domains))*minScanCoverage {
		days := int(scanRecencyWindow.Hours() / 24)
		desc := fmt.Sprintf("Only %d of %d domains scanned within the last %d days", recent, len(inv.Domains), days)
		f.Failed = append(f.Failed, domain.Finding{
			Check:       CheckRegularAssessments,
			Severity:    domain.FindingHigh,
			Description: desc,
			Remediation: "Implement regular automated scanning",
		})
	}
}
