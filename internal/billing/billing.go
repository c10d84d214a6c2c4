package billing

import (
	"errors"
	"math"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
)

// TaxRate is the fixed 9% Iranian VAT applied to every invoice. It is not
// configurable per invoice.
const TaxRate = 0.09

// DefaultDueDays is the payment window applied when an invoice is issued
// without an explicit due date.
const DefaultDueDays = 7

// ErrTrackingCodeRequired is returned when a non-cash payment is
// submitted without a tracking code. The check runs before any write.
var ErrTrackingCodeRequired = errors.New("tracking code is required for non-cash payments")

// ErrInvoiceNotPayable is returned when a payment is recorded against an
// invoice that is already paid or cancelled.
var ErrInvoiceNotPayable = errors.New("invoice is not payable in its current status")

// Totals are the aggregate fields stored on an invoice.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ItemTotal is the line total of one invoice item.
func ItemTotal(quantity, unitPrice int64) int64 {
	return quantity * unitPrice
}

// Tax computes the VAT on a taxable amount. The product of an integer
// Toman amount and the 9% rate can land exactly on a half; ties round to
// even, and the choice is fixed here so stored and recomputed totals
// always agree.
func Tax(amount int64) int64 {
	return int64(math.RoundToEven(TaxRate * float64(amount)))
}

// ComputeTotals derives the aggregate fields from an invoice's items and
// discount: subtotal is the sum of line totals, tax applies to the
// discounted base, and total = subtotal - discount + tax.
func ComputeTotals(items []models.InvoiceItem, discount int64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += ItemTotal(item.Quantity, item.UnitPrice)
	}
	tax := Tax(subtotal - discount)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

// IsOverdue reports whether an invoice has passed its due date. Paid and
// cancelled invoices are never overdue, whatever their dates say.
func IsOverdue(dueDate time.Time, status string) bool {
	if status == models.InvoiceStatusPaid || status == models.InvoiceStatusCancelled {
		return false
	}
	return dueDate.Before(time.Now())
}

// ValidatePayment rejects payment submissions that must not reach the
// store: every method except cash needs a tracking code.
func ValidatePayment(method, trackingCode string) error {
	if method != models.PaymentMethodCash && trackingCode == "" {
		return ErrTrackingCodeRequired
	}
	return nil
}
