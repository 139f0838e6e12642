package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"gorm.io/gorm"
)

// FindDraftReport implements ports.ReportRepository.
func (a *SQLiteAdapter) FindDraftReport(ctx context.Context, organization string, framework domain.Framework) (*domain.ComplianceReport, error) {
	var model ReportModel
	err := a.db.WithContext(ctx).
		Where("organization = ? AND framework = ? AND status = ?", organization, string(framework), string(domain.ReportDraft)).
		Order("generated_at desc").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reportFromModel(model)
}

// SaveReport implements ports.ReportRepository.
func (a *SQLiteAdapter) SaveReport(ctx context.Context, r *domain.ComplianceReport) error {
	model, err := reportToModel(*r)
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	return a.db.WithContext(ctx).Save(&model).Error
}

// GetReport implements ports.ReportRepository.
func (a *SQLiteAdapter) GetReport(ctx context.Context, id string) (*domain.ComplianceReport, error) {
	var model ReportModel
	err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return reportFromModel(model)
}

// ListReports implements ports.ReportRepository. An empty organization lists every report.
func (a *SQLiteAdapter) ListReports(ctx context.Context, organization string) ([]domain.ComplianceReport, error) {
	query := a.db.WithContext(ctx).Order("generated_at desc")
	if organization != "" {
		query = query.Where("LOWER(organization) = LOWER(?)", organization)
	}

	var models []ReportModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return reportsFromModels(models)
}

// ListStaleReports implements ports.ReportRepository.
// Timestamps are stored as text, so now is compared in UTC like every stored value.
func (a *SQLiteAdapter) ListStaleReports(ctx context.Context, now time.Time) ([]domain.ComplianceReport, error) {
	var models []ReportModel
	if err := a.db.WithContext(ctx).
		Where("status <> ? AND valid_until < ?", string(domain.ReportExpired), now.UTC()).
		Order("valid_until").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return reportsFromModels(models)
}

func reportsFromModels(models []ReportModel) ([]domain.ComplianceReport, error) {
	out := make([]domain.ComplianceReport, 0, len(models))
	for _, m := range models {
		r, err := reportFromModel(m)
		if err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", m.ID, err)
		}
		out = append(out, *r)
	}
	return out, nil
}
