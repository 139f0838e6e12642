package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateAssetCriticality implements ports.CriticalityRepository.
func (a *SQLiteAdapter) GetOrCreateAssetCriticality(ctx context.Context, assetID string, defaults domain.CriticalityDefaults) (*domain.AssetCriticality, bool, error) {
	var model CriticalityModel
	created := false

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("asset_id = ?", assetID).First(&model).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		model = CriticalityModel{
			ID:               uuid.New().String(),
			AssetID:          assetID,
			BusinessValue:    defaults.BusinessValue,
			DataSensitivity:  defaults.DataSensitivity,
			CriticalityLevel: string(domain.CriticalityMedium),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a creation race; load the winner.
			return tx.Where("asset_id = ?", assetID).First(&model).Error
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return criticalityFromModel(model), created, nil
}

// SaveAssetCriticality implements ports.CriticalityRepository.
func (a *SQLiteAdapter) SaveAssetCriticality(ctx context.Context, c *domain.AssetCriticality) error {
	model := criticalityToModel(*c)
	return a.db.WithContext(ctx).Save(&model).Error
}

// GetOrCreateRiskPrioritization implements ports.RiskRepository.
func (a *SQLiteAdapter) GetOrCreateRiskPrioritization(ctx context.Context, vulnerabilityID string, defaults domain.RiskDefaults) (*domain.RiskPrioritization, bool, error) {
	var model RiskModel
	created := false

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("vulnerability_id = ?", vulnerabilityID).First(&model).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		model = RiskModel{
			ID:                 uuid.New().String(),
			VulnerabilityID:    vulnerabilityID,
			AssetCriticalityID: defaults.AssetCriticalityID,
			RemediationEffort:  defaults.RemediationEffort,
			SLADays:            defaults.SLADays,
			PriorityLevel:      string(domain.PriorityMedium),
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Where("vulnerability_id = ?", vulnerabilityID).First(&model).Error
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return riskFromModel(model), created, nil
}

// SaveRiskPrioritization implements ports.RiskRepository.
func (a *SQLiteAdapter) SaveRiskPrioritization(ctx context.Context, r *domain.RiskPrioritization) error {
	model := riskToModel(*r)
	return a.db.WithContext(ctx).Save(&model).Error
}

// ListRiskPrioritizations returns stored prioritizations of an organization's vulnerabilities,
// highest overall score first.
func (a *SQLiteAdapter) ListRiskPrioritizations(ctx context.Context, organization string) ([]domain.RiskPrioritization, error) {
	inv, err := a.GetInventory(ctx, organization)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, v := range inv.Vulnerabilities() {
		ids = append(ids, v.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var models []RiskModel
	if err := a.db.WithContext(ctx).
		Where("vulnerability_id IN ?", ids).
		Order("overall_risk_score desc").
		Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.RiskPrioritization, len(models))
	for i, m := range models {
		out[i] = *riskFromModel(m)
	}
	return out, nil
}
