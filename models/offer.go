package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobOffer represents an agreed piece of work inside a conversation. Delivery
// and review-prompt messages reference the offer they act on.
type JobOffer struct {
	ID             string     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID string     `gorm:"type:uuid;not null;index" json:"conversation_id"`
	ClientID       string     `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID   string     `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	Status         string     `gorm:"not null;default:'in_progress'" json:"status"` // in_progress, delivered, revision_requested, completed
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the JobOffer model
func (JobOffer) TableName() string {
	return "job_offers"
}

// BeforeCreate issues the server id for offers created without one
func (o *JobOffer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Review represents a client's rating of a completed job offer.
// At most one review exists per offer.
type Review struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	JobOfferID string    `gorm:"type:uuid;uniqueIndex;not null" json:"job_offer_id"`
	ReviewerID string    `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	Rating     int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate issues the server id for reviews created without one
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
