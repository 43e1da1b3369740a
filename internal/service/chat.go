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

// EventNewMessage tells the receiver's other sessions that a thread changed,
// so an open leads list can refresh without having joined the chat room.
const EventNewMessage = "newMessage"

type ChatService interface {
	SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error)
	GetMessages(ctx context.Context, query MessageQuery) ([]*domain.Message, error)
	DeleteLead(ctx context.Context, propertyID, counterpartID, callerID uuid.UUID) (int64, error)
}

type SendMessageInput struct {
	PropertyID uuid.UUID
	SenderID   uuid.UUID
	// ReceiverID is required only when the sender owns the property.
	ReceiverID *uuid.UUID
	Text       string
}

type MessageQuery struct {
	PropertyID    uuid.UUID
	CallerID      uuid.UUID
	CallerIsAdmin bool
	// With narrows the result to the caller's thread with this user.
	With *uuid.UUID
}

type chatService struct {
	messageRepo  repository.MessageRepository
	propertyRepo repository.PropertyRepository
	audit        AuditService
	publisher    realtime.Publisher
	log          logger.Logger
	now          func() time.Time
}

func NewChatService(
	messageRepo repository.MessageRepository,
	propertyRepo repository.PropertyRepository,
	audit AuditService,
	publisher realtime.Publisher,
	log logger.Logger,
) ChatService {
	if publisher == nil {
		publisher = realtime.Nop
	}
	return &chatService{
		messageRepo:  messageRepo,
		propertyRepo: propertyRepo,
		audit:        audit,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

func (s *chatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return nil, apperrors.ErrMessageTooLong
	}

	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPropertyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve property: %w", err)
	}

	receiverID, err := resolveReceiver(property, input.SenderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:         uuid.New(),
		SenderID:   input.SenderID,
		ReceiverID: receiverID,
		PropertyID: property.ID,
		Text:       text,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	s.publisher.Publish(realtime.ChatRoom(message.SenderID, message.ReceiverID), realtime.EventReceiveMessage, message)
	s.publisher.Publish(realtime.UserRoom(message.ReceiverID), EventNewMessage, message)

	recordAudit(ctx, s.audit, s.log, message.SenderID, message.PropertyID, domain.EventTypeMessageSent, map[string]interface{}{
		"message_id":  message.ID.String(),
		"receiver_id": message.ReceiverID.String(),
	})

	s.log.Debug("Message sent", "message_id", message.ID, "property_id", message.PropertyID)
	return message, nil
}

// resolveReceiver picks who a message goes to. Messages from anyone but the
// owner go to the owner; the owner must name the counterparty it replies to.
func resolveReceiver(property *domain.Property, senderID uuid.UUID, requested *uuid.UUID) (uuid.UUID, error) {
	if senderID == property.OwnerID {
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, apperrors.ErrReceiverRequired
		}
		if *requested == senderID {
			return uuid.Nil, apperrors.ErrSelfMessage
		}
		return *requested, nil
	}

	if requested != nil && *requested != uuid.Nil && *requested != property.OwnerID {
		return uuid.Nil, apperrors.BadRequest("receiver must be the property owner")
	}
	return property.OwnerID, nil
}

func (s *chatService) GetMessages(ctx context.Context, query MessageQuery) ([]*domain.Message, error) {
	var (
		messages []*domain.Message
		err      error
	)

	if query.With != nil {
		if *query.With == query.CallerID {
			return nil, apperrors.BadRequest("cannot list a thread with yourself")
		}
		messages, err = s.messageRepo.ListThread(ctx, query.PropertyID, query.CallerID, *query.With)
	} else {
		messages, err = s.messageRepo.ListByProperty(ctx, query.PropertyID)
	}
	if err != nil {
		return nil, err
	}

	if query.CallerIsAdmin {
		return messages, nil
	}

	// Callers only see conversations they are part of. The owner is on every
	// message about its property, so it still sees the whole history.
	visible := make([]*domain.Message, 0, len(messages))
	for _, m := range messages {
		if m.Involves(query.CallerID) {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

func (s *chatService) DeleteLead(ctx context.Context, propertyID, counterpartID, callerID uuid.UUID) (int64, error) {
	if counterpartID == callerID {
		return 0, apperrors.BadRequest("cannot delete a lead with yourself")
	}

	deleted, err := s.messageRepo.DeleteThread(ctx, propertyID, callerID, counterpartID)
	if err != nil {
		return 0, err
	}
	metrics.LeadsDeleted.Add(float64(deleted))

	recordAudit(ctx, s.audit, s.log, callerID, propertyID, domain.EventTypeLeadDeleted, map[string]interface{}{
		"counterpart_id": counterpartID.String(),
		"deleted":        deleted,
	})

	s.log.Info("Lead deleted", "property_id", propertyID, "caller_id", callerID, "deleted", deleted)
	return deleted, nil
}
