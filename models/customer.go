package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a client of the agency. Customers are never hard-deleted:
// removing one sets its status to "blocked" so invoices and tickets keep
// a valid reference.
type Customer struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      *string `json:"user_id" gorm:"type:uuid;index"`
	FullName    string  `json:"full_name" gorm:"not null"`
	Email       string  `json:"email" gorm:"not null"`
	Phone       string  `json:"phone"`
	CompanyName string  `json:"company_name"`
	NationalID  string  `json:"national_id"`
	Address     string  `json:"address"`
	City        string  `json:"city" gorm:"default:'گرگان'"`
	PostalCode  string  `json:"postal_code"`
	Status      string  `json:"status" gorm:"type:varchar(20);default:'active'"`
	Notes       string  `json:"notes" gorm:"type:text"`

	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LastActivityAt.IsZero() {
		c.LastActivityAt = time.Now()
	}
	return nil
}
