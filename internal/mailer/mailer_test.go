package mailer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice() *models.Invoice {
	return &models.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-202509-0001",
		IssueDate:     time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
		Total:         2_725_000,
		Customer: models.Customer{
			FullName: "علی رضایی",
			Email:    "ali@example.com",
		},
	}
}

func TestSendInvoiceIssued(t *testing.T) {
	var got outgoing
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(srv.URL, "test-key", "رابیک <info@rabik.ir>")
	require.NoError(t, m.SendInvoiceIssued(testInvoice()))

	assert.Equal(t, []string{"ali@example.com"}, got.To)
	assert.Contains(t, got.Subject, "INV-202509-0001")
	assert.Contains(t, got.HTML, "علی رضایی")
	assert.Contains(t, got.HTML, `dir="rtl"`)
	assert.Contains(t, got.HTML, "/customer/invoices/inv-1")
}

func TestSendDueReminder(t *testing.T) {
	var got outgoing
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(srv.URL, "test-key", "رابیک <info@rabik.ir>")
	require.NoError(t, m.SendDueReminder(testInvoice(), 3))

	assert.Contains(t, got.Subject, "یادآوری")
	assert.Contains(t, got.HTML, "INV-202509-0001")
}

func TestMailerWithoutAPIKeyIsDisabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	m := New(srv.URL, "", "رابیک <info@rabik.ir>")
	require.NoError(t, m.SendInvoiceIssued(testInvoice()))
	assert.False(t, called)
}

func TestSendSkipsCustomersWithoutEmail(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	inv := testInvoice()
	inv.Customer.Email = ""

	m := New(srv.URL, "test-key", "رابیک <info@rabik.ir>")
	require.NoError(t, m.SendInvoiceIssued(inv))
	assert.False(t, called)
}

func TestSendReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := New(srv.URL, "test-key", "رابیک <info@rabik.ir>")
	err := m.SendInvoiceIssued(testInvoice())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "mail API"))
}
