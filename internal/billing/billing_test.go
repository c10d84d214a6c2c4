package billing

import (
	"testing"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	items := []models.InvoiceItem{
		{Quantity: 2, UnitPrice: 1_000_000},
		{Quantity: 1, UnitPrice: 500_000},
	}

	t.Run("no discount", func(t *testing.T) {
		totals := ComputeTotals(items, 0)
		assert.Equal(t, int64(2_500_000), totals.Subtotal)
		assert.Equal(t, int64(225_000), totals.Tax)
		assert.Equal(t, int64(2_725_000), totals.Total)
	})

	t.Run("tax applies to discounted base", func(t *testing.T) {
		totals := ComputeTotals(items, 200_000)
		assert.Equal(t, int64(2_500_000), totals.Subtotal)
		assert.Equal(t, int64(207_000), totals.Tax)
		assert.Equal(t, int64(2_507_000), totals.Total)
	})

	t.Run("empty items", func(t *testing.T) {
		totals := ComputeTotals(nil, 0)
		assert.Equal(t, int64(0), totals.Subtotal)
		assert.Equal(t, int64(0), totals.Tax)
		assert.Equal(t, int64(0), totals.Total)
	})
}

func TestTaxRoundsHalfToEven(t *testing.T) {
	// 9% of 150 is 13.5: ties go to the even neighbour.
	assert.Equal(t, int64(14), Tax(150))
	// 9% of 50 is 4.5.
	assert.Equal(t, int64(4), Tax(50))
	// Non-tie cases round normally.
	assert.Equal(t, int64(9), Tax(100))
	assert.Equal(t, int64(90_000), Tax(1_000_000))
}

func TestItemTotal(t *testing.T) {
	assert.Equal(t, int64(3_000_000), ItemTotal(3, 1_000_000))
	assert.Equal(t, int64(0), ItemTotal(0, 1_000_000))
}

func TestIsOverdue(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name    string
		dueDate time.Time
		status  string
		want    bool
	}{
		{"unpaid past due", past, models.InvoiceStatusUnpaid, true},
		{"unpaid not yet due", future, models.InvoiceStatusUnpaid, false},
		{"paid past due", past, models.InvoiceStatusPaid, false},
		{"cancelled past due", past, models.InvoiceStatusCancelled, false},
		{"overdue stays overdue", past, models.InvoiceStatusOverdue, true},
		{"draft past due", past, models.InvoiceStatusDraft, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(tt.dueDate, tt.status))
		})
	}
}

func TestValidatePayment(t *testing.T) {
	t.Run("cash needs no tracking code", func(t *testing.T) {
		assert.NoError(t, ValidatePayment(models.PaymentMethodCash, ""))
	})

	t.Run("non-cash methods require a tracking code", func(t *testing.T) {
		for _, method := range []string{
			models.PaymentMethodOnline,
			models.PaymentMethodCard,
			models.PaymentMethodCheque,
			models.PaymentMethodBankTransfer,
		} {
			assert.ErrorIs(t, ValidatePayment(method, ""), ErrTrackingCodeRequired, method)
			assert.NoError(t, ValidatePayment(method, "TRK-123"), method)
		}
	})
}
