package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	UnknownUserName      = "Unknown"
	UnknownPropertyTitle = "Unknown Property"
)

// Lead summarises the latest exchange between the viewer and one counterparty
// about one property. It is computed on demand and never stored.
type Lead struct {
	CounterpartyUserID  uuid.UUID `json:"counterparty_user_id"`
	PropertyID          uuid.UUID `json:"property_id"`
	CounterpartyName    string    `json:"counterparty_name"`
	PropertyTitle       string    `json:"property_title"`
	LastMessageText     string    `json:"last_message_text"`
	LastMessageAt       time.Time `json:"last_message_at"`
	CounterpartyMissing bool      `json:"counterparty_missing"`
	PropertyMissing     bool      `json:"property_missing"`
}

// LeadKey identifies a lead from the viewer's side.
type LeadKey struct {
	CounterpartyID uuid.UUID
	PropertyID     uuid.UUID
}
