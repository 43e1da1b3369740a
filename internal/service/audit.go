package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/repository"
	"realty_messaging/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorUserID *uuid.UUID, propertyID *uuid.UUID, eventType string, payload map[string]interface{}) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorUserID *uuid.UUID, propertyID *uuid.UUID, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:   time.Now().UTC(),
		ActorUserID: actorUserID,
		PropertyID:  propertyID,
		EventType:   eventType,
		Payload:     payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}

// recordAudit writes an audit entry without failing the caller; the primary
// write has already succeeded by the time it runs.
func recordAudit(ctx context.Context, audit AuditService, log logger.Logger, actor, property uuid.UUID, eventType string, payload map[string]interface{}) {
	if audit == nil {
		return
	}
	if err := audit.LogEvent(ctx, &actor, &property, eventType, payload); err != nil {
		log.Warn("Failed to write audit log", "error", err, "event_type", eventType)
	}
}
