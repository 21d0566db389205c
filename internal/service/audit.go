package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/repository"
)

const DefaultAuditLimit = 50

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type auditService struct {
	auditRepo repository.AuditRepository
	now       func() time.Time
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo, now: time.Now}
}

func (s *auditService) Record(ctx context.Context, actorID uuid.UUID, action, entityType string, entityID uuid.UUID, detail any) {
	payload := []byte("{}")
	if detail != nil {
		encoded, err := json.Marshal(detail)
		if err != nil {
			logger.Warn("Failed to encode audit detail", "action", action, "error", err)
		} else {
			payload = encoded
		}
	}

	entry := &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     payload,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.auditRepo.Record(ctx, entry); err != nil {
		metrics.IncAuditFailure()
		logger.WarnContext(ctx, "Failed to write audit entry", "action", action, "entity", entityType, "entityID", entityID, "error", err)
	}
}

func (s *auditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.Persistence("list audit entries", err)
	}
	return entries, nil
}
