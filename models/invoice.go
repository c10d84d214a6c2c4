package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// All money columns are whole Toman stored as int64; there is no minor
// currency unit anywhere in the system.

// Invoice aggregates an ordered set of items. The stored invariant is
// total = subtotal - discount + tax, recomputed server-side on every
// write that touches items or discount.
type Invoice struct {
	ID            string   `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceNumber string   `json:"invoice_number" gorm:"uniqueIndex;not null"`
	CustomerID    string   `json:"customer_id" gorm:"type:uuid;not null;index"`
	Customer      Customer `json:"customer" gorm:"foreignKey:CustomerID"`
	ProjectID     *string  `json:"project_id" gorm:"type:uuid"`

	IssueDate time.Time  `json:"issue_date"`
	DueDate   time.Time  `json:"due_date"`
	PaidDate  *time.Time `json:"paid_date"`

	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`

	Status string `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Notes  string `json:"notes" gorm:"type:text"`

	Items    []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments []Payment     `json:"payments,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// InvoiceItem is one line on an invoice. Total is quantity * unit price,
// computed server-side.
type InvoiceItem struct {
	ID          string `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceID   string `json:"invoice_id" gorm:"type:uuid;not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity" gorm:"default:1"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`

	CreatedAt time.Time `json:"created_at"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Payment is one settlement recorded against an invoice.
type Payment struct {
	ID            string  `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceID     string  `json:"invoice_id" gorm:"type:uuid;not null;index"`
	Amount        int64   `json:"amount"`
	PaymentMethod string  `json:"payment_method" gorm:"type:varchar(20);default:'online'"`
	TransactionID *string `json:"transaction_id"`
	TrackingCode  *string `json:"tracking_code"`
	Gateway       *string `json:"gateway"`
	Status        string  `json:"status" gorm:"type:varchar(20);default:'pending'"`

	PaidAt *time.Time `json:"paid_at"`
	Notes  string     `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
