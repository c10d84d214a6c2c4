package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is one row in a user's notification feed. Rows are created
// by the dispatcher in response to domain events and only ever mutated by
// their recipient (the read flag) or deleted.
type Notification struct {
	ID      string  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID  string  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title   string  `json:"title" gorm:"not null"`
	Message string  `json:"message" gorm:"type:text"`
	Type    string  `json:"type" gorm:"type:varchar(20);default:'info'"`
	Link    *string `json:"link"`
	IsRead  bool    `json:"is_read" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
