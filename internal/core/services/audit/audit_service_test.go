package audit

import (
	"context"
	"testing"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func TestAuditService_Log(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	ctx := context.Background()

	// Test basic logging
	mockRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(l domain.AuditLog) bool {
		return l.Action == domain.ActionInfo && l.Target == "target" && l.Actor == domain.SystemActor
	})).Return(nil)

	err := svc.Log(ctx, domain.ActionInfo, "target", "details")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestAuditService_LogWithActor(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	ctx := domain.WithActor(context.Background(), "ciso")

	mockRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(l domain.AuditLog) bool {
		return l.Action == domain.ActionReportApproved && l.Actor == "ciso" && l.Target == "r-1"
	})).Return(nil)

	err := svc.Log(ctx, domain.ActionReportApproved, "r-1", "Acme SOC2")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAuditService_LogRejectsUnknownAction(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	err := svc.Log(context.Background(), domain.AuditAction("DELETE_EVERYTHING"), "t", "d")
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	mockRepo.AssertNotCalled(t, "SaveAuditLog", mock.Anything, mock.Anything)
}

func TestAuditService_GetLogs(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	logs := []domain.AuditLog{{ID: 1, Action: domain.ActionComplianceRun}}
	mockRepo.On("ListAuditLogs", mock.Anything, 10).Return(logs, nil)
	mockRepo.On("ListAuditLogs", mock.Anything, DefaultLimit).Return([]domain.AuditLog{}, nil)

	res, err := svc.GetLogs(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, res, 1)
	assert.Equal(t, domain.ActionComplianceRun, res[0].Action)

	_, err = svc.GetLogs(context.Background(), 0)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
