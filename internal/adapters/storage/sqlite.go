package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements ports.Storage using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// DomainModel is the GORM model for root domains.
type DomainModel struct {
	ID         string `gorm:"primaryKey"`
	Name       string
	Project    string `gorm:"index"`
	LastScanAt *time.Time
}

// AssetModel is the GORM model for discovered subdomains.
type AssetModel struct {
	ID            string `gorm:"primaryKey"`
	DomainID      string `gorm:"index"`
	Name          string
	HTTPURL       string
	HTTPStatus    int
	PageTitle     string
	ContentType   string
	EndpointCount int

	Technologies    []TechnologyModel    `gorm:"foreignKey:AssetID"`
	Vulnerabilities []VulnerabilityModel `gorm:"foreignKey:AssetID"`
}

// TechnologyModel stores one detected technology of an asset.
type TechnologyModel struct {
	ID      uint   `gorm:"primaryKey"`
	AssetID string `gorm:"uniqueIndex:idx_asset_technology"`
	Name    string `gorm:"uniqueIndex:idx_asset_technology"`
}

// VulnerabilityModel is the GORM model for scanner results.
type VulnerabilityModel struct {
	ID        string `gorm:"primaryKey"`
	AssetID   string `gorm:"index"`
	Name      string
	Type      string
	Severity  int
	CVSSScore *float64
}

// CriticalityModel stores one assessment per asset.
type CriticalityModel struct {
	ID               string `gorm:"primaryKey"`
	AssetID          string `gorm:"uniqueIndex"`
	BusinessValue    float64
	DataSensitivity  float64
	CriticalityScore float64
	CriticalityLevel string
	AssessedAt       time.Time
	AssessedBy       string
}

// RiskModel stores one prioritization per vulnerability.
type RiskModel struct {
	ID                  string `gorm:"primaryKey"`
	VulnerabilityID     string `gorm:"uniqueIndex"`
	VulnerabilityName   string
	AssetID             string `gorm:"index"`
	AssetName           string
	AssetCriticalityID  string
	CriticalityScore    float64
	ExploitabilityScore float64
	BusinessImpact      float64
	OverallRiskScore    float64 `gorm:"index"`
	PriorityLevel       string
	RemediationEffort   string
	SLADays             int
	CalculatedAt        time.Time
}

// ReportModel is the GORM model for compliance reports. Findings are stored as JSON.
type ReportModel struct {
	ID              string `gorm:"primaryKey"`
	Organization    string `gorm:"index:idx_report_lookup"`
	Framework       string `gorm:"index:idx_report_lookup"`
	Status          string `gorm:"index:idx_report_lookup"`
	GeneratedAt     time.Time
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
	ValidUntil      time.Time `gorm:"index"`
	Findings        string
	RemediationPlan string
	CreatedBy       string
	ApprovedBy      string
	ApprovedAt      *time.Time
}

// AuditLogModel is the GORM model for audit entries.
type AuditLogModel struct {
	ID        uint `gorm:"primaryKey"`
	Actor     string
	Action    string `gorm:"index"`
	Target    string
	Details   string
	Timestamp time.Time `gorm:"index"`
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("failed to enable query tracing: %w", err)
	}

	// SQLite allows a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto Migrate
	if err := db.AutoMigrate(
		&DomainModel{}, &AssetModel{}, &TechnologyModel{}, &VulnerabilityModel{},
		&CriticalityModel{}, &RiskModel{}, &ReportModel{}, &AuditLogModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var _ ports.Storage = (*SQLiteAdapter)(nil)
