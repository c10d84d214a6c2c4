package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AutomationRule is an admin-defined reminder rule evaluated during the
// overdue sweep. Condition is a boolean expression over the parameters
// total, discount, days_overdue and status, e.g.
// "total > 10000000 && days_overdue >= 7". Title and Message become the
// emitted notification; Message may contain the {invoice_number}
// placeholder.
type AutomationRule struct {
	ID        string `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string `json:"name" gorm:"not null"`
	Condition string `json:"condition" gorm:"not null"`
	Title     string `json:"title" gorm:"not null"`
	Message   string `json:"message" gorm:"type:text"`
	Type      string `json:"type" gorm:"type:varchar(20);default:'warning'"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *AutomationRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
