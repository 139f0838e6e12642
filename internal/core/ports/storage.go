package ports

import (
	"context"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// InventoryRepository gives read access to the inventory maintained by the discovery subsystem.
type InventoryRepository interface {
	// GetInventory returns the domains and assets whose project name contains organization
	// (case-insensitive). An organization with nothing discovered yields an empty snapshot.
	GetInventory(ctx context.Context, organization string) (*domain.Inventory, error)

	// SaveInventory upserts domains, assets, technologies and vulnerabilities.
	SaveInventory(ctx context.Context, inv *domain.Inventory) error
}

// CriticalityRepository persists asset criticality assessments keyed by asset ID.
type CriticalityRepository interface {
	// GetOrCreateAssetCriticality loads the assessment for assetID, creating it from
	// defaults when none exists. The boolean reports whether it was created.
	GetOrCreateAssetCriticality(ctx context.Context, assetID string, defaults domain.CriticalityDefaults) (*domain.AssetCriticality, bool, error)
	SaveAssetCriticality(ctx context.Context, c *domain.AssetCriticality) error
}

// RiskRepository persists vulnerability prioritizations keyed by vulnerability ID.
type RiskRepository interface {
	GetOrCreateRiskPrioritization(ctx context.Context, vulnerabilityID string, defaults domain.RiskDefaults) (*domain.RiskPrioritization, bool, error)
	SaveRiskPrioritization(ctx context.Context, r *domain.RiskPrioritization) error
	// ListRiskPrioritizations returns the stored ranking of an organization, highest score first.
	ListRiskPrioritizations(ctx context.Context, organization string) ([]domain.RiskPrioritization, error)
}

// ReportRepository persists compliance reports.
type ReportRepository interface {
	// FindDraftReport returns the draft for (organization, framework), or nil when there is none.
	FindDraftReport(ctx context.Context, organization string, framework domain.Framework) (*domain.ComplianceReport, error)
	SaveReport(ctx context.Context, r *domain.ComplianceReport) error
	// GetReport returns domain.ErrReportNotFound when id is unknown.
	GetReport(ctx context.Context, id string) (*domain.ComplianceReport, error)
	ListReports(ctx context.Context, organization string) ([]domain.ComplianceReport, error)
	// ListStaleReports returns non-expired reports whose validity ended before now.
	ListStaleReports(ctx context.Context, now time.Time) ([]domain.ComplianceReport, error)
}

// Storage is the full persistence surface implemented by the storage adapters.
type Storage interface {
	InventoryRepository
	CriticalityRepository
	RiskRepository
	ReportRepository
	AuditRepository

	// Close closes the storage connection.
	Close() error
}
