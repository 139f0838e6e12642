package compliance

import (
	"context"
	"sort"
	"sync"
	"time"

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

// MockAuditService
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	args := m.Called(ctx, action, target, details)
	return args.Error(0)
}

func (m *MockAuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	logs, _ := args.Get(0).([]domain.AuditLog)
	return logs, args.Error(1)
}

// reportStore keeps reports in memory and counts writes.
type reportStore struct {
	mu      sync.Mutex
	reports map[string]domain.ComplianceReport
	writes  int
	saveErr error
}

func newReportStore() *reportStore {
	return &reportStore{reports: make(map[string]domain.ComplianceReport)}
}

func (s *reportStore) FindDraftReport(_ context.Context, org string, fw domain.Framework) (*domain.ComplianceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.Organization == org && r.Framework == fw && r.Status == domain.ReportDraft {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *reportStore) SaveReport(_ context.Context, r *domain.ComplianceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.reports[r.ID] = *r
	s.writes++
	return nil
}

func (s *reportStore) GetReport(_ context.Context, id string) (*domain.ComplianceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	return &r, nil
}

func (s *reportStore) ListReports(_ context.Context, org string) ([]domain.ComplianceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ComplianceReport
	for _, r := range s.reports {
		if org == "" || r.Organization == org {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}

func (s *reportStore) ListStaleReports(_ context.Context, now time.Time) ([]domain.ComplianceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ComplianceReport
	for _, r := range s.reports {
		if r.IsStale(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *reportStore) byStatus(status domain.ReportStatus) []domain.ComplianceReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ComplianceReport
	for _, r := range s.reports {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
