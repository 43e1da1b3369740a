package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds the text of a single chat message.
const MaxMessageLength = 5000

// Message is one chat line about a property between two users.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	PropertyID uuid.UUID `json:"property_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Counterparty returns the participant that is not viewerID.
func (m *Message) Counterparty(viewerID uuid.UUID) uuid.UUID {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether userID took part in the message.
func (m *Message) Involves(userID uuid.UUID) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
