package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/repository"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

const maxPropertyTitle = 255

type PropertyService interface {
	Create(ctx context.Context, owner *domain.User, title string) (*domain.Property, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

type propertyService struct {
	propertyRepo repository.PropertyRepository
	audit        AuditService
	log          logger.Logger
	now          func() time.Time
}

func NewPropertyService(propertyRepo repository.PropertyRepository, audit AuditService, log logger.Logger) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		audit:        audit,
		log:          log,
		now:          time.Now,
	}
}

func (s *propertyService) Create(ctx context.Context, owner *domain.User, title string) (*domain.Property, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.BadRequest("title is required")
	}
	if len(title) > maxPropertyTitle {
		return nil, apperrors.BadRequest("title is too long (max 255 characters)")
	}
	if owner.Role == domain.RoleBuyer {
		return nil, fmt.Errorf("buyers cannot list properties: %w", apperrors.ErrForbidden)
	}

	now := s.now().UTC()
	property := &domain.Property{
		ID:        uuid.New(),
		OwnerID:   owner.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, owner.ID, property.ID, domain.EventTypePropertyCreated, map[string]interface{}{
		"title": property.Title,
	})
	return property, nil
}

func (s *propertyService) Get(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return s.propertyRepo.GetByID(ctx, id)
}
