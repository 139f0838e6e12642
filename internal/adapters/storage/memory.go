package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
)

// MemoryStorage is a process-local ports.Storage used for demo mode and tests.
// Records are copied on the way in and out.
type MemoryStorage struct {
	mu            sync.RWMutex
	domains       map[string]domain.Domain
	assets        map[string]domain.Asset
	criticalities map[string]domain.AssetCriticality
	risks         map[string]domain.RiskPrioritization
	reports       map[string]domain.ComplianceReport
	audit         []domain.AuditLog
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		domains:       make(map[string]domain.Domain),
		assets:        make(map[string]domain.Asset),
		criticalities: make(map[string]domain.AssetCriticality),
		risks:         make(map[string]domain.RiskPrioritization),
		reports:       make(map[string]domain.ComplianceReport),
	}
}

func (s *MemoryStorage) GetInventory(_ context.Context, organization string) (*domain.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv := &domain.Inventory{Organization: organization}
	needle := strings.ToLower(organization)
	ids := make(map[string]struct{})
	for _, d := range s.domains {
		if strings.Contains(strings.ToLower(d.Project), needle) {
			inv.Domains = append(inv.Domains, d)
			ids[d.ID] = struct{}{}
		}
	}
	for _, a := range s.assets {
		if _, ok := ids[a.DomainID]; ok {
			inv.Assets = append(inv.Assets, copyAsset(a))
		}
	}

	sort.Slice(inv.Domains, func(i, j int) bool { return inv.Domains[i].Name < inv.Domains[j].Name })
	sort.Slice(inv.Assets, func(i, j int) bool { return inv.Assets[i].Name < inv.Assets[j].Name })
	return inv, nil
}

func (s *MemoryStorage) SaveInventory(_ context.Context, inv *domain.Inventory) error {
	if inv == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range inv.Domains {
		s.domains[d.ID] = d
	}
	for _, a := range inv.Assets {
		a = copyAsset(a)
		for i := range a.Vulnerabilities {
			a.Vulnerabilities[i].AssetID = a.ID
		}
		s.assets[a.ID] = a
	}
	return nil
}

func (s *MemoryStorage) GetOrCreateAssetCriticality(_ context.Context, assetID string, defaults domain.CriticalityDefaults) (*domain.AssetCriticality, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.criticalities[assetID]; ok {
		return &c, false, nil
	}
	c := domain.AssetCriticality{
		ID:               uuid.New().String(),
		AssetID:          assetID,
		BusinessValue:    defaults.BusinessValue,
		DataSensitivity:  defaults.DataSensitivity,
		CriticalityLevel: domain.CriticalityMedium,
	}
	s.criticalities[assetID] = c
	return &c, true, nil
}

func (s *MemoryStorage) SaveAssetCriticality(_ context.Context, c *domain.AssetCriticality) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criticalities[c.AssetID] = *c
	return nil
}

func (s *MemoryStorage) GetOrCreateRiskPrioritization(_ context.Context, vulnerabilityID string, defaults domain.RiskDefaults) (*domain.RiskPrioritization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.risks[vulnerabilityID]; ok {
		return &r, false, nil
	}
	r := domain.RiskPrioritization{
		ID:                 uuid.New().String(),
		VulnerabilityID:    vulnerabilityID,
		AssetCriticalityID: defaults.AssetCriticalityID,
		RemediationEffort:  defaults.RemediationEffort,
		SLADays:            defaults.SLADays,
		PriorityLevel:      domain.PriorityMedium,
	}
	s.risks[vulnerabilityID] = r
	return &r, true, nil
}

func (s *MemoryStorage) SaveRiskPrioritization(_ context.Context, r *domain.RiskPrioritization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks[r.VulnerabilityID] = *r
	return nil
}

func (s *MemoryStorage) ListRiskPrioritizations(ctx context.Context, organization string) ([]domain.RiskPrioritization, error) {
	inv, err := s.GetInventory(ctx, organization)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RiskPrioritization
	for _, v := range inv.Vulnerabilities() {
		if r, ok := s.risks[v.ID]; ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallRiskScore > out[j].OverallRiskScore })
	return out, nil
}

func (s *MemoryStorage) FindDraftReport(_ context.Context, organization string, framework domain.Framework) (*domain.ComplianceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.ComplianceReport
	for _, r := range s.reports {
		if r.Organization == organization && r.Framework == framework && r.Status == domain.ReportDraft {
			if found == nil || r.GeneratedAt.After(found.GeneratedAt) {
				r := r
				found = &r
			}
		}
	}
	return found, nil
}

func (s *MemoryStorage) SaveReport(_ context.Context, r *domain.ComplianceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = *r
	return nil
}

func (s *MemoryStorage) GetReport(_ context.Context, id string) (*domain.ComplianceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return &r, nil
}

func (s *MemoryStorage) ListReports(_ context.Context, organization string) ([]domain.ComplianceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ComplianceReport, 0, len(s.reports))
	for _, r := range s.reports {
		if organization == "" || strings.EqualFold(r.Organization, organization) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}

func (s *MemoryStorage) ListStaleReports(_ context.Context, now time.Time) ([]domain.ComplianceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ComplianceReport
	for _, r := range s.reports {
		if r.IsStale(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidUntil.Before(out[j].ValidUntil) })
	return out, nil
}

func (s *MemoryStorage) SaveAuditLog(_ context.Context, log domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = uint(len(s.audit) + 1)
	s.audit = append(s.audit, log)
	return nil
}

func (s *MemoryStorage) ListAuditLogs(_ context.Context, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = max(limit, 0)
	out := make([]domain.AuditLog, 0, min(limit, len(s.audit)))
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

func copyAsset(a domain.Asset) domain.Asset {
	a.Technologies = append([]string(nil), a.Technologies...)
	a.Vulnerabilities = append([]domain.Vulnerability(nil), a.Vulnerabilities...)
	return a
}

var _ ports.Storage = (*MemoryStorage)(nil)
