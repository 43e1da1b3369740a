package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/repository"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

type LeadService interface {
	// GetLeadsFor returns one lead per counterparty and property, each built
	// from the latest message, in order of first appearance newest-first.
	GetLeadsFor(ctx context.Context, userID uuid.UUID) ([]*domain.Lead, error)
}

type leadService struct {
	messageRepo  repository.MessageRepository
	userRepo     repository.UserRepository
	propertyRepo repository.PropertyRepository
	log          logger.Logger
}

func NewLeadService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	propertyRepo repository.PropertyRepository,
	log logger.Logger,
) LeadService {
	return &leadService{
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		log:          log,
	}
}

func (s *leadService) GetLeadsFor(ctx context.Context, userID uuid.UUID) ([]*domain.Lead, error) {
	messages, err := s.messageRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	leads := make([]*domain.Lead, 0)
	seen := make(map[domain.LeadKey]struct{})
	for _, m := range messages {
		if !m.Involves(userID) {
			continue
		}
		counterparty := m.Counterparty(userID)
		if counterparty == userID {
			s.log.Warn("Skipping self-addressed message", "message_id", m.ID)
			continue
		}

		key := domain.LeadKey{CounterpartyID: counterparty, PropertyID: m.PropertyID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		leads = append(leads, &domain.Lead{
			CounterpartyUserID: counterparty,
			PropertyID:         m.PropertyID,
			LastMessageText:    m.Text,
			LastMessageAt:      m.CreatedAt,
		})
	}

	s.enrich(ctx, leads)
	return leads, nil
}

type displayLabel struct {
	value   string
	missing bool
}

// enrich fills display names. Lookups are best-effort: failures fall back to
// placeholder labels and never fail the request.
func (s *leadService) enrich(ctx context.Context, leads []*domain.Lead) {
	names := make(map[uuid.UUID]displayLabel)
	titles := make(map[uuid.UUID]displayLabel)

	for _, lead := range leads {
		name, ok := names[lead.CounterpartyUserID]
		if !ok {
			name = s.userName(ctx, lead.CounterpartyUserID)
			names[lead.CounterpartyUserID] = name
		}
		lead.CounterpartyName = name.value
		lead.CounterpartyMissing = name.missing

		title, ok := titles[lead.PropertyID]
		if !ok {
			title = s.propertyTitle(ctx, lead.PropertyID)
			titles[lead.PropertyID] = title
		}
		lead.PropertyTitle = title.value
		lead.PropertyMissing = title.missing
	}
}

func (s *leadService) userName(ctx context.Context, id uuid.UUID) displayLabel {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return displayLabel{value: domain.UnknownUserName, missing: true}
		}
		s.log.Warn("Failed to resolve lead counterparty", "error", err, "user_id", id)
		return displayLabel{value: domain.UnknownUserName}
	}
	if name := user.DisplayName(); name != "" {
		return displayLabel{value: name}
	}
	return displayLabel{value: domain.UnknownUserName}
}

func (s *leadService) propertyTitle(ctx context.Context, id uuid.UUID) displayLabel {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			return displayLabel{value: domain.UnknownPropertyTitle, missing: true}
		}
		s.log.Warn("Failed to resolve lead property", "error", err, "property_id", id)
		return displayLabel{value: domain.UnknownPropertyTitle}
	}
	if property.Title == "" {
		return displayLabel{value: domain.UnknownPropertyTitle}
	}
	return displayLabel{value: property.Title}
}
