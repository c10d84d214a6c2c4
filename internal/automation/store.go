package automation

import (
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"gorm.io/gorm"
)

// OverdueCandidate is the slice of an invoice the sweep needs, joined
// with the owning customer's user account.
type OverdueCandidate struct {
	ID             string
	InvoiceNumber  string
	CustomerUserID string
	Total          int64
	Discount       int64
	DueDate        time.Time
	Status         string
}

// Store is the persistence surface of the automation service.
type Store interface {
	// OverdueCandidates returns unpaid invoices whose due date has passed.
	OverdueCandidates(now time.Time) ([]OverdueCandidate, error)
	// MarkOverdue flips one invoice to overdue. It reports false when the
	// invoice was no longer unpaid, which makes concurrent sweeps safe.
	MarkOverdue(invoiceID string) (bool, error)
	// ActiveRules returns the enabled reminder rules.
	ActiveRules() ([]models.AutomationRule, error)

	ProjectWithUser(projectID string) (*models.Project, error)
	TicketWithCustomer(ticketID string) (*models.SupportTicket, error)
	CustomerUserID(customerID string) (string, error)
	AdminUserIDs() ([]string, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) OverdueCandidates(now time.Time) ([]OverdueCandidate, error) {
	var out []OverdueCandidate
	err := s.db.Model(&models.Invoice{}).
		Select("invoices.id, invoices.invoice_number, invoices.total, invoices.discount, invoices.due_date, invoices.status, customers.user_id as customer_user_id").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.status = ? AND invoices.due_date < ?", models.InvoiceStatusUnpaid, now).
		Scan(&out).Error
	return out, err
}

func (s *gormStore) MarkOverdue(invoiceID string) (bool, error) {
	// The status predicate is the idempotency guard: only the sweep run
	// that actually performs the flip gets a nonzero row count.
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", invoiceID, models.InvoiceStatusUnpaid).
		Update("status", models.InvoiceStatusOverdue)
	return res.RowsAffected > 0, res.Error
}

func (s *gormStore) ActiveRules() ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := s.db.Where("is_active = ?", true).Find(&rules).Error
	return rules, err
}

func (s *gormStore) ProjectWithUser(projectID string) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Customer").First(&project, "id = ?", projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *gormStore) TicketWithCustomer(ticketID string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := s.db.Preload("Customer").First(&ticket, "id = ?", ticketID).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *gormStore) CustomerUserID(customerID string) (string, error) {
	var customer models.Customer
	if err := s.db.Select("user_id").First(&customer, "id = ?", customerID).Error; err != nil {
		return "", err
	}
	if customer.UserID == nil {
		return "", nil
	}
	return *customer.UserID, nil
}

func (s *gormStore) AdminUserIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Pluck("id", &ids).Error
	return ids, err
}
