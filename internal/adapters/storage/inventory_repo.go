package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetInventory loads every domain whose project name contains organization (case-insensitive)
// together with their assets, technologies and vulnerabilities.
func (a *SQLiteAdapter) GetInventory(ctx context.Context, organization string) (*domain.Inventory, error) {
	inv := &domain.Inventory{Organization: organization}

	var domains []DomainModel
	pattern := "%" + escapeLike(strings.ToLower(organization)) + "%"
	if err := a.db.WithContext(ctx).
		Where("LOWER(project) LIKE ? ESCAPE '\\'", pattern).
		Order("name").
		Find(&domains).Error; err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return inv, nil
	}

	ids := make([]string, len(domains))
	for i, d := range domains {
		ids[i] = d.ID
		inv.Domains = append(inv.Domains, domainFromModel(d))
	}

	var assets []AssetModel
	if err := a.db.WithContext(ctx).
		Preload("Technologies", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Vulnerabilities", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("domain_id IN ?", ids).
		Order("name").
		Find(&assets).Error; err != nil {
		return nil, err
	}

	for _, m := range assets {
		inv.Assets = append(inv.Assets, assetFromModel(m))
	}
	return inv, nil
}

// SaveInventory upserts domains, assets and vulnerabilities in one transaction.
// An asset's technology list is replaced by the one supplied.
func (a *SQLiteAdapter) SaveInventory(ctx context.Context, inv *domain.Inventory) error {
	if inv == nil {
		return nil
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range inv.Domains {
			model := domainToModel(d)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save domain %s: %w", d.ID, err)
			}
		}

		for _, asset := range inv.Assets {
			model := assetToModel(asset)
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save asset %s: %w", asset.ID, err)
			}

			if err := tx.Where("asset_id = ?", asset.ID).Delete(&TechnologyModel{}).Error; err != nil {
				return err
			}
			seen := make(map[string]struct{}, len(asset.Technologies))
			for _, tech := range asset.Technologies {
				if _, dup := seen[tech]; dup || tech == "" {
					continue
				}
				seen[tech] = struct{}{}
				if err := tx.Create(&TechnologyModel{AssetID: asset.ID, Name: tech}).Error; err != nil {
					return err
				}
			}

			for _, v := range asset.Vulnerabilities {
				vm := vulnerabilityToModel(asset.ID, v)
				if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&vm).Error; err != nil {
					return fmt.Errorf("failed to save vulnerability %s: %w", v.ID, err)
				}
			}
		}
		return nil
	})
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
