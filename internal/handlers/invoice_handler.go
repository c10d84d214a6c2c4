package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AGhilHz/rabik-crm/internal/billing"
	"github.com/AGhilHz/rabik-crm/internal/mailer"
	"github.com/AGhilHz/rabik-crm/models"
	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PaymentGateway is the slice of the online gateway the invoice handler
// needs; the Zarinpal client satisfies it.
type PaymentGateway interface {
	Request(ctx context.Context, amount int64, callbackURL, description string) (authority, payURL string, err error)
	Verify(ctx context.Context, authority string, amount int64) (refID int64, err error)
}

// InvoiceHandler serves the invoice lifecycle API.
type InvoiceHandler struct {
	db          *gorm.DB
	billing     *billing.Service
	mailer      *mailer.Mailer
	gateway     PaymentGateway
	callbackURL string
}

func NewInvoiceHandler(db *gorm.DB, svc *billing.Service, m *mailer.Mailer, gw PaymentGateway, callbackURL string) *InvoiceHandler {
	return &InvoiceHandler{db: db, billing: svc, mailer: m, gateway: gw, callbackURL: callbackURL}
}

// List returns invoices newest first. Admins see everything; customers
// are always scoped to their own customer record.
func (h *InvoiceHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Invoice{}).Preload("Customer").Order("created_at desc")

	if role, _ := c.Get("role"); role != models.RoleAdmin {
		customerID, ok := c.Get("customer_id")
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "no customer record for this account"})
			return
		}
		query = query.Where("customer_id = ?", customerID)
	} else if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count invoices"})
		return
	}

	var invoices []models.Invoice
	if err := query.Scopes(Paginate(c)).Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch invoices"})
		return
	}
	if invoices == nil {
		invoices = make([]models.Invoice, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, invoices, totalRows))
}

func (h *InvoiceHandler) loadInvoice(c *gin.Context) (*models.Invoice, bool) {
	var invoice models.Invoice
	err := h.db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Payments").
		First(&invoice, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return nil, false
	}

	if role, _ := c.Get("role"); role != models.RoleAdmin {
		customerID, _ := c.Get("customer_id")
		if customerID != invoice.CustomerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this invoice"})
			return nil, false
		}
	}
	return &invoice, true
}

// Get returns one invoice with items, payments and customer.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Create builds the invoice with its items in one transaction and mails
// the customer.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input billing.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.billing.CreateInvoice(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create invoice: " + err.Error()})
		return
	}

	logActivity(h.db, c, "invoice", invoice.ID, "created", "فاکتور صادر شد", models.Metadata{
		"invoice_number": invoice.InvoiceNumber,
		"total":          invoice.Total,
	})

	if err := h.db.Preload("Customer").First(invoice, "id = ?", invoice.ID).Error; err == nil {
		go func(inv models.Invoice) {
			if err := h.mailer.SendInvoiceIssued(&inv); err != nil {
				slog.Warn("invoice email failed", "invoice", inv.InvoiceNumber, "error", err)
			}
		}(*invoice)
	}

	c.JSON(http.StatusCreated, invoice)
}

type invoiceUpdatePayload struct {
	DueDate  *time.Time `json:"due_date"`
	Discount *int64     `json:"discount"`
	Status   string     `json:"status"`
	Notes    *string    `json:"notes"`
}

// Update edits the mutable invoice fields. Changing the discount
// recomputes tax and total from the stored items.
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	var payload invoiceUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.DueDate != nil {
		invoice.DueDate = *payload.DueDate
	}
	if payload.Discount != nil {
		totals := billing.ComputeTotals(invoice.Items, *payload.Discount)
		invoice.Discount = *payload.Discount
		invoice.Subtotal = totals.Subtotal
		invoice.Tax = totals.Tax
		invoice.Total = totals.Total
	}
	if payload.Status != "" {
		invoice.Status = payload.Status
	}
	if payload.Notes != nil {
		invoice.Notes = *payload.Notes
	}

	if err := h.db.Save(invoice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update invoice"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Delete removes a draft invoice; anything already issued is cancelled
// instead so the numbering sequence stays intact.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	if invoice.Status == models.InvoiceStatusDraft {
		if err := h.db.Delete(&models.Invoice{}, "id = ?", invoice.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete invoice"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "invoice deleted"})
		return
	}

	if err := h.db.Model(invoice).Update("status", models.InvoiceStatusCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel invoice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice cancelled"})
}

// RecordPayment records a manual settlement (cash, card, cheque, bank
// transfer, or an online payment confirmed elsewhere).
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	var input billing.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.billing.RecordPayment(invoice.ID, input)
	switch err {
	case nil:
	case billing.ErrTrackingCodeRequired:
		c.JSON(http.StatusBadRequest, gin.H{"error": "کد پیگیری الزامی است"})
		return
	case billing.ErrInvoiceNotPayable:
		c.JSON(http.StatusConflict, gin.H{"error": "invoice is not payable"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record payment: " + err.Error()})
		return
	}

	logActivity(h.db, c, "invoice", invoice.ID, "payment_recorded", "پرداخت ثبت شد", models.Metadata{
		"invoice_number": invoice.InvoiceNumber,
		"amount":         payment.Amount,
		"method":         payment.PaymentMethod,
	})
	c.JSON(http.StatusCreated, payment)
}

// Pay starts an online payment and returns the gateway redirect URL.
func (h *InvoiceHandler) Pay(c *gin.Context) {
	if h.gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "online payments are not configured"})
		return
	}
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}
	if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "invoice is not payable"})
		return
	}

	authority, payURL, err := h.gateway.Request(c.Request.Context(), invoice.Total,
		h.callbackURL+"?invoice_id="+invoice.ID,
		"پرداخت فاکتور "+invoice.InvoiceNumber)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authority": authority, "pay_url": payURL})
}

// PaymentCallback is where the gateway returns the customer. A verified
// payment is recorded with the gateway reference as tracking code.
func (h *InvoiceHandler) PaymentCallback(c *gin.Context) {
	invoiceID := c.Query("invoice_id")
	authority := c.Query("Authority")
	status := c.Query("Status")

	if h.gateway == nil || invoiceID == "" || authority == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment callback"})
		return
	}
	if status != "OK" {
		c.JSON(http.StatusOK, gin.H{"paid": false, "message": "پرداخت لغو شد"})
		return
	}

	var invoice models.Invoice
	if err := h.db.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}

	refID, err := h.gateway.Verify(c.Request.Context(), authority, invoice.Total)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed: " + err.Error()})
		return
	}

	payment, err := h.billing.RecordPayment(invoice.ID, billing.PaymentInput{
		PaymentMethod: models.PaymentMethodOnline,
		TrackingCode:  formatRefID(refID),
		Gateway:       "zarinpal",
	})
	if err != nil {
		// The gateway took the money but our write failed; the reference
		// ID in the log is what support needs to reconcile manually.
		slog.Error("verified payment could not be recorded", "invoice", invoice.InvoiceNumber, "ref_id", refID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record verified payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"paid": true, "payment": payment})
}

func formatRefID(refID int64) string {
	return strconv.FormatInt(refID, 10)
}

// Print returns the payload the printable invoice view renders: the
// invoice, Persian status/method labels and the grand total in words.
func (h *InvoiceHandler) Print(c *gin.Context) {
	invoice, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":        invoice,
		"status_label":   models.InvoiceStatusLabels[invoice.Status],
		"total_in_words": num2words.Convert(int(invoice.Total)),
		"method_labels":  models.PaymentMethodLabels,
	})
}
