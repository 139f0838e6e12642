package risk

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// MockInventory
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) GetInventory(ctx context.Context, organization string) (*domain.Inventory, error) {
	args := m.Called(ctx, organization)
	inv, _ := args.Get(0).(*domain.Inventory)
	return inv, args.Error(1)
}

func (m *MockInventory) SaveInventory(ctx context.Context, inv *domain.Inventory) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// MockCriticalityRepository
type MockCriticalityRepository struct {
	mock.Mock
}

func (m *MockCriticalityRepository) GetOrCreateAssetCriticality(ctx context.Context, assetID string, defaults domain.CriticalityDefaults) (*domain.AssetCriticality, bool, error) {
	args := m.Called(ctx, assetID, defaults)
	rec, _ := args.Get(0).(*domain.AssetCriticality)
	return rec, args.Bool(1), args.Error(2)
}

func (m *MockCriticalityRepository) SaveAssetCriticality(ctx context.Context, c *domain.AssetCriticality) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// recordStore keeps criticality and prioritization records in maps, keyed like the real store.
type recordStore struct {
	mu            sync.Mutex
	criticalities map[string]domain.AssetCriticality
	risks         map[string]domain.RiskPrioritization
	creates       int
	saves         int
}

func newRecordStore() *recordStore {
	return &recordStore{
		criticalities: make(map[string]domain.AssetCriticality),
		risks:         make(map[string]domain.RiskPrioritization),
	}
}

func (s *recordStore) GetOrCreateAssetCriticality(_ context.Context, assetID string, d domain.CriticalityDefaults) (*domain.AssetCriticality, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.criticalities[assetID]; ok {
		return &rec, false, nil
	}
	rec := domain.AssetCriticality{
		ID:               fmt.Sprintf("crit-%s", assetID),
		AssetID:          assetID,
		BusinessValue:    d.BusinessValue,
		DataSensitivity:  d.DataSensitivity,
		CriticalityLevel: domain.CriticalityMedium,
	}
	s.criticalities[assetID] = rec
	s.creates++
	return &rec, true, nil
}

func (s *recordStore) SaveAssetCriticality(_ context.Context, c *domain.AssetCriticality) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criticalities[c.AssetID] = *c
	s.saves++
	return nil
}

func (s *recordStore) GetOrCreateRiskPrioritization(_ context.Context, vulnID string, d domain.RiskDefaults) (*domain.RiskPrioritization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.risks[vulnID]; ok {
		return &rec, false, nil
	}
	rec := domain.RiskPrioritization{
		ID:                 fmt.Sprintf("risk-%s", vulnID),
		VulnerabilityID:    vulnID,
		AssetCriticalityID: d.AssetCriticalityID,
		RemediationEffort:  d.RemediationEffort,
		SLADays:            d.SLADays,
		PriorityLevel:      domain.PriorityMedium,
	}
	s.risks[vulnID] = rec
	return &rec, true, nil
}

func (s *recordStore) SaveRiskPrioritization(_ context.Context, r *domain.RiskPrioritization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risks[r.VulnerabilityID] = *r
	return nil
}

func (s *recordStore) ListRiskPrioritizations(_ context.Context, _ string) ([]domain.RiskPrioritization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RiskPrioritization, 0, len(s.risks))
	for _, r := range s.risks {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OverallRiskScore > out[j].OverallRiskScore })
	return out, nil
}
