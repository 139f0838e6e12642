package audit

import (
	"context"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
	"github.com/lcalzada-xor/reconrisk/internal/core/ports"
)

// DefaultLimit caps GetLogs when the caller passes no positive limit.
const DefaultLimit = 100

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	// Actor is attached by the CLI or HTTP layer; it defaults to the system actor.
	actor := domain.ActorFromContext(ctx)

	// Use Domain Factory to ensure business rules
	entry, err := domain.NewAuditLog(actor, action, target, details)
	if err != nil {
		return err
	}

	return s.repo.SaveAuditLog(ctx, *entry)
}

func (s *AuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.repo.ListAuditLogs(ctx, limit)
}

var _ ports.AuditService = (*AuditService)(nil)
