package billing

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"gorm.io/gorm"
)

// Notifier delivers a notification to one user's feed.
type Notifier interface {
	Notify(userID, title, message, typ string) error
}

// Service owns the invoice lifecycle: creating invoices with their items,
// recording payments and flipping statuses. All multi-row writes run in a
// single database transaction.
type Service struct {
	db       *gorm.DB
	notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// InvoiceItemInput is one line of a new invoice.
type InvoiceItemInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// InvoiceInput is the payload for creating an invoice with its items.
type InvoiceInput struct {
	CustomerID string             `json:"customer_id" binding:"required"`
	ProjectID  *string            `json:"project_id"`
	IssueDate  *time.Time         `json:"issue_date"`
	DueDate    *time.Time         `json:"due_date"`
	Discount   int64              `json:"discount"`
	Status     string             `json:"status"`
	Notes      string             `json:"notes"`
	Items      []InvoiceItemInput `json:"items" binding:"required,min=1"`
}

// PaymentInput is the payload for recording a settlement.
type PaymentInput struct {
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	TrackingCode  string `json:"tracking_code"`
	Gateway       string `json:"gateway"`
	Notes         string `json:"notes"`
}

// CreateInvoice persists the invoice and all of its items as a unit and
// returns the stored invoice with recomputed aggregates.
func (s *Service) CreateInvoice(in InvoiceInput) (*models.Invoice, error) {
	items := make([]models.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.InvoiceItem{
			Title:       it.Title,
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   it.UnitPrice,
			Total:       ItemTotal(qty, it.UnitPrice),
		})
	}
	totals := ComputeTotals(items, in.Discount)

	issueDate := time.Now()
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, DefaultDueDays)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}

	invoice := models.Invoice{
		CustomerID: in.CustomerID,
		ProjectID:  in.ProjectID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Subtotal:   totals.Subtotal,
		Discount:   in.Discount,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Status:     status,
		Notes:      in.Notes,
		Items:      items,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, &models.Invoice{}, "INV")
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, err
	}

	slog.Info("invoice created", "invoice_number", invoice.InvoiceNumber, "total", invoice.Total)
	return &invoice, nil
}

// RecordPayment validates the submission, then inserts the payment row
// and marks the invoice paid in one transaction. On success the
// customer's user gets a success notification.
func (s *Service) RecordPayment(invoiceID string, in PaymentInput) (*models.Payment, error) {
	if err := ValidatePayment(in.PaymentMethod, in.TrackingCode); err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.db.Preload("Customer").First(&invoice, "id = ?", invoiceID).Error; err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusCancelled {
		return nil, ErrInvoiceNotPayable
	}

	amount := in.Amount
	if amount == 0 {
		amount = invoice.Total
	}

	now := time.Now()
	payment := models.Payment{
		InvoiceID:     invoice.ID,
		Amount:        amount,
		PaymentMethod: in.PaymentMethod,
		Status:        models.PaymentStatusSuccess,
		PaidAt:        &now,
		Notes:         in.Notes,
	}
	if in.TrackingCode != "" {
		payment.TrackingCode = &in.TrackingCode
	}
	if in.Gateway != "" {
		payment.Gateway = &in.Gateway
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Invoice{}).
			Where("id = ?", invoice.ID).
			Updates(map[string]any{"status": models.InvoiceStatusPaid, "paid_date": now}).Error
	})
	if err != nil {
		return nil, err
	}

	if invoice.Customer.UserID != nil {
		if err := s.notifier.Notify(*invoice.Customer.UserID,
			"پرداخت موفق",
			fmt.Sprintf("فاکتور #%s با موفقیت پرداخت شد", invoice.InvoiceNumber),
			models.NotificationSuccess,
		); err != nil {
			slog.Warn("payment notification failed", "invoice", invoice.InvoiceNumber, "error", err)
		}
	}

	slog.Info("payment recorded", "invoice_number", invoice.InvoiceNumber, "amount", amount, "method", in.PaymentMethod)
	return &payment, nil
}

// NextTicketNumber issues a sequential ticket number inside tx.
func NextTicketNumber(tx *gorm.DB) (string, error) {
	return nextNumber(tx, &models.SupportTicket{}, "TKT")
}

// nextNumber builds document numbers of the form PFX-YYYYMM-NNNN, with
// NNNN restarting each month. Must run inside the transaction that
// inserts the row, so a unique-index violation rolls everything back.
func nextNumber(tx *gorm.DB, model any, prefix string) (string, error) {
	monthStart := time.Now().Format("2006-01") + "-01"
	var count int64
	if err := tx.Model(model).Where("created_at >= ?", monthStart).Count(&count).Error; err != nil {
		return "", err
	}
	stamp := strings.ReplaceAll(time.Now().Format("2006-01"), "-", "")
	return fmt.Sprintf("%s-%s-%04d", prefix, stamp, count+1), nil
}
