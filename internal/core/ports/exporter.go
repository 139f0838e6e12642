package ports

import "github.com/lcalzada-xor/reconrisk/internal/core/domain"

// ReportExporter renders evaluation results as downloadable documents.
type ReportExporter interface {
	ExportComplianceReport(report *domain.ComplianceReport) ([]byte, error)
	ExportRiskRanking(organization string, ranking []domain.RiskPrioritization) ([]byte, error)
}
