package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"event_time"`
	ActorUserID *uuid.UUID             `json:"actor_user_id,omitempty"`
	PropertyID  *uuid.UUID             `json:"property_id,omitempty"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	EventTypeUserRegistered   = "USER_REGISTERED"
	EventTypePropertyCreated  = "PROPERTY_CREATED"
	EventTypeMessageSent      = "MESSAGE_SENT"
	EventTypeLeadDeleted      = "LEAD_DELETED"
	EventTypeInquiryCreated   = "INQUIRY_CREATED"
	EventTypeNotificationRead = "NOTIFICATION_READ"
)
