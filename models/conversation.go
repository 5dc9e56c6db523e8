package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation represents a chat thread between a client and a freelancer,
// optionally tied to a product listing
type Conversation struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID     string  `gorm:"type:uuid;not null;index" json:"client_id"`     // foreign key to users table
	FreelancerID string  `gorm:"type:uuid;not null;index" json:"freelancer_id"` // foreign key to users table
	ProductID    *uint   `gorm:"index" json:"product_id,omitempty"`             // optional product the thread is about

	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Client     *User     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User     `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Messages   []Message `gorm:"foreignKey:ConversationID" json:"-"`

	// Computed per viewer, not stored
	LastMessagePreview string `gorm:"-" json:"last_message_preview"`
	UnreadCount        int64  `gorm:"-" json:"unread_count"`
}

// TableName specifies the table name for the Conversation model
func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate issues the server id for conversations created without one
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// OtherParticipant returns the participant that is not the given user.
func (c Conversation) OtherParticipant(userID string) string {
	if c.ClientID == userID {
		return c.FreelancerID
	}
	return c.ClientID
}

// HasParticipant reports whether the given user belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}
