package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageKind discriminates the specialized message variants rendered in a
// conversation transcript.
type MessageKind string

const (
	KindText            MessageKind = "text"
	KindDelivery        MessageKind = "delivery"
	KindRevisionRequest MessageKind = "revision_request"
	KindReviewPrompt    MessageKind = "review_prompt"
	// KindUnsupported is the fallback for records whose kind this client
	// does not recognize. Such messages still render, just minimally.
	KindUnsupported MessageKind = "unsupported"
)

// NormalizeKind maps a raw server-provided kind string to a known
// MessageKind. Unknown values fall back to KindUnsupported; it never fails.
func NormalizeKind(raw string) MessageKind {
	switch MessageKind(raw) {
	case KindText, KindDelivery, KindRevisionRequest, KindReviewPrompt:
		return MessageKind(raw)
	default:
		return KindUnsupported
	}
}

// Message represents a single entry in a conversation transcript
type Message struct {
	ID             string      `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string      `gorm:"type:uuid;not null;index" json:"conversation_id"` // foreign key to conversations table
	SenderID       string      `gorm:"type:uuid;not null;index" json:"sender_id"`       // foreign key to users table
	Kind           MessageKind `gorm:"not null;default:'text'" json:"kind"`
	Text           string      `gorm:"type:text" json:"text"`
	Reason         string      `gorm:"type:text" json:"reason,omitempty"`             // revision_request: free-text reason
	JobOfferID     *string     `gorm:"type:uuid;index" json:"job_offer_id,omitempty"` // delivery / review_prompt: the offer acted on
	IsRead         bool        `gorm:"not null;default:false" json:"is_read"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// ClientTemp marks a locally appended optimistic message that the
	// server has not confirmed yet. Never persisted or serialized.
	ClientTemp bool `gorm:"-" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate issues the server id for messages created without one
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	return nil
}

// Before compares two messages under the transcript's total order:
// (CreatedAt, ID) ascending.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// Confirmed reports whether the message carries a server-issued identity.
func (m Message) Confirmed() bool {
	return !m.ClientTemp
}
