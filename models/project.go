package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a piece of work the agency does for one customer,
// optionally linked to a catalog Service.
type Project struct {
	ID          string   `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID  string   `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer    Customer `json:"customer" gorm:"foreignKey:CustomerID"`
	ServiceID   *string  `json:"service_id" gorm:"type:uuid"`
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description" gorm:"type:text"`
	Status      string   `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Priority    string   `json:"priority" gorm:"type:varchar(20);default:'medium'"`

	StartDate     *time.Time `json:"start_date"`
	DueDate       *time.Time `json:"due_date"`
	CompletedDate *time.Time `json:"completed_date"`

	AgreedPrice *int64 `json:"agreed_price"`
	// Progress is a percentage, clamped to [0,100] on write.
	Progress   int     `json:"progress" gorm:"default:0"`
	AssignedTo *string `json:"assigned_to" gorm:"type:uuid"`
	Notes      string  `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
