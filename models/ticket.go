package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupportTicket is a conversation between a customer and the agency.
// Status and priority transitions are deliberately unrestricted; only the
// resolved/closed timestamps are stamped when those states are entered.
type SupportTicket struct {
	ID           string   `json:"id" gorm:"type:uuid;primaryKey"`
	TicketNumber string   `json:"ticket_number" gorm:"uniqueIndex;not null"`
	CustomerID   string   `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer     Customer `json:"customer" gorm:"foreignKey:CustomerID"`
	ProjectID    *string  `json:"project_id" gorm:"type:uuid"`

	Subject     string `json:"subject" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Priority    string `json:"priority" gorm:"type:varchar(20);default:'medium'"`
	Status      string `json:"status" gorm:"type:varchar(20);default:'open';index"`
	AssignedTo  *string `json:"assigned_to" gorm:"type:uuid"`

	Messages []TicketMessage `json:"messages,omitempty" gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	ClosedAt   *time.Time `json:"closed_at"`
}

func (t *SupportTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TicketMessage is one entry in a ticket's append-only thread. Messages
// flagged internal are visible to admins only.
type TicketMessage struct {
	ID         string  `json:"id" gorm:"type:uuid;primaryKey"`
	TicketID   string  `json:"ticket_id" gorm:"type:uuid;not null;index"`
	SenderID   *string `json:"sender_id" gorm:"type:uuid"`
	SenderType string  `json:"sender_type" gorm:"type:varchar(20);default:'customer'"`
	Message    string  `json:"message" gorm:"type:text;not null"`
	IsInternal bool    `json:"is_internal" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *TicketMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
