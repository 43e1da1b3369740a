package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"realty_messaging/internal/domain"
	"realty_messaging/internal/metrics"
	"realty_messaging/internal/realtime"
	"realty_messaging/internal/repository"
	apperrors "realty_messaging/pkg/errors"
	"realty_messaging/pkg/logger"
)

type NotificationService interface {
	Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error)
	// NotifyInquiry notifies the owner of propertyID that senderID is interested.
	NotifyInquiry(ctx context.Context, propertyID, senderID uuid.UUID, message string) (*domain.Notification, error)
	GetNotificationsFor(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, callerID uuid.UUID) (*domain.Notification, error)
}

type NotifyInput struct {
	RecipientID uuid.UUID
	SenderID    uuid.UUID
	PropertyID  uuid.UUID
	Message     string
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	propertyRepo     repository.PropertyRepository
	audit            AuditService
	publisher        realtime.Publisher
	log              logger.Logger
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	propertyRepo repository.PropertyRepository,
	audit AuditService,
	publisher realtime.Publisher,
	log logger.Logger,
) NotificationService {
	if publisher == nil {
		publisher = realtime.Nop
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		propertyRepo:     propertyRepo,
		audit:            audit,
		publisher:        publisher,
		log:              log,
		now:              time.Now,
	}
}

func (s *notificationService) Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return nil, apperrors.ErrMessageTooLong
	}
	if input.RecipientID == uuid.Nil || input.SenderID == uuid.Nil || input.PropertyID == uuid.Nil {
		return nil, apperrors.BadRequest("recipient, sender and property are required")
	}
	if input.RecipientID == input.SenderID {
		return nil, apperrors.ErrSelfMessage
	}

	notification := &domain.Notification{
		ID:          uuid.New(),
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		PropertyID:  input.PropertyID,
		Message:     text,
		Read:        false,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.Inc()

	s.publisher.Publish(realtime.UserRoom(notification.RecipientID), realtime.EventNewNotification, notification)
	return notification, nil
}

func (s *notificationService) NotifyInquiry(ctx context.Context, propertyID, senderID uuid.UUID, message string) (*domain.Notification, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve property: %w", err)
	}

	notification, err := s.Notify(ctx, NotifyInput{
		RecipientID: property.OwnerID,
		SenderID:    senderID,
		PropertyID:  property.ID,
		Message:     message,
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.log, senderID, property.ID, domain.EventTypeInquiryCreated, map[string]interface{}{
		"notification_id": notification.ID.String(),
	})
	return notification, nil
}

func (s *notificationService) GetNotificationsFor(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, callerID uuid.UUID) (*domain.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.RecipientID != callerID {
		return nil, apperrors.ErrForbidden
	}
	if notification.Read {
		return notification, nil
	}

	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return nil, err
	}
	notification.Read = true

	recordAudit(ctx, s.audit, s.log, callerID, notification.PropertyID, domain.EventTypeNotificationRead, map[string]interface{}{
		"notification_id": notification.ID.String(),
	})
	return notification, nil
}
