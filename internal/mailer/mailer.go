// Package mailer renders the RTL transactional emails (invoice issued,
// due-date reminder) and delivers them through an HTTP mail API. Mail is
// best-effort: failures are logged by callers and never abort the
// workflow that triggered the message.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/go-resty/resty/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mailer posts rendered emails to a Resend-compatible API. A Mailer with
// an empty API key silently drops messages, so a deployment without mail
// credentials still works.
type Mailer struct {
	http   *resty.Client
	apiURL string
	from   string
}

func New(apiURL, apiKey, from string) *Mailer {
	m := &Mailer{apiURL: apiURL, from: from}
	if apiKey != "" {
		m.http = resty.New().
			SetTimeout(15 * time.Second).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json")
	}
	return m
}

type outgoing struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *Mailer) send(to, subject, html string) error {
	if m.http == nil {
		return nil
	}
	resp, err := m.http.R().
		SetBody(outgoing{From: m.from, To: []string{to}, Subject: subject, HTML: html}).
		Post(m.apiURL)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("send mail: mail API returned %s", resp.Status())
	}
	return nil
}

var faDigits = message.NewPrinter(language.Persian)

// formatToman renders an amount with Persian digit grouping, matching
// the site's currency formatting.
func formatToman(amount int64) string {
	return faDigits.Sprintf("%d تومان", amount)
}

type invoiceEmailData struct {
	CustomerName  string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Amount        string
	Link          string
	DaysLeft      int
}

var invoiceIssuedTmpl = template.Must(template.New("invoice_issued").Parse(`<!DOCTYPE html>
<html dir="rtl" lang="fa">
<head><meta charset="UTF-8"></head>
<body style="font-family: Tahoma, Arial, sans-serif; background:#f5f5f5; padding:20px">
  <div style="max-width:600px;margin:0 auto;background:white;border-radius:10px;overflow:hidden">
    <div style="background:#1E3A8A;color:white;padding:30px;text-align:center">
      <h1>🧾 فاکتور جدید</h1>
      <p>رابیک - آژانس دیجیتال مارکتینگ</p>
    </div>
    <div style="padding:30px">
      <p>سلام <strong>{{.CustomerName}}</strong> عزیز،</p>
      <p>فاکتور شما با موفقیت صادر شد.</p>
      <div style="background:#f9f9f9;padding:20px;border-radius:8px">
        <p><strong>شماره فاکتور:</strong> {{.InvoiceNumber}}</p>
        <p><strong>تاریخ صدور:</strong> {{.IssueDate}}</p>
        <p><strong>تاریخ سررسید:</strong> {{.DueDate}}</p>
      </div>
      <div style="font-size:32px;font-weight:bold;color:#1E3A8A;text-align:center;margin:20px 0">{{.Amount}}</div>
      <p style="text-align:center"><a href="{{.Link}}" style="background:#1E3A8A;color:white;padding:12px 30px;text-decoration:none;border-radius:8px">مشاهده و پرداخت فاکتور</a></p>
    </div>
    <div style="background:#f9f9f9;padding:20px;text-align:center;color:#666;font-size:12px">
      <p>این ایمیل به صورت خودکار ارسال شده است.</p>
      <p><a href="https://rabik.ir">www.rabik.ir</a> | <a href="mailto:info@rabik.ir">info@rabik.ir</a></p>
    </div>
  </div>
</body>
</html>`))

var reminderTmpl = template.Must(template.New("invoice_reminder").Parse(`<!DOCTYPE html>
<html dir="rtl" lang="fa">
<head><meta charset="UTF-8"></head>
<body style="font-family: Tahoma, Arial, sans-serif; background:#f5f5f5; padding:20px">
  <div style="max-width:600px;margin:0 auto;background:white;border-radius:10px;overflow:hidden">
    <div style="background:#F59E0B;color:white;padding:30px;text-align:center">
      <h1>⏰ یادآوری سررسید فاکتور</h1>
    </div>
    <div style="padding:30px">
      <p>سلام <strong>{{.CustomerName}}</strong> عزیز،</p>
      <div style="background:#FEF3C7;border-right:4px solid #F59E0B;padding:15px;margin:20px 0;border-radius:4px">
        <p>تا سررسید فاکتور <strong>{{.InvoiceNumber}}</strong> به مبلغ {{.Amount}}، {{.DaysLeft}} روز باقی مانده است.</p>
      </div>
      <p style="text-align:center"><a href="{{.Link}}" style="background:#EF4444;color:white;padding:12px 30px;text-decoration:none;border-radius:8px">پرداخت فاکتور</a></p>
    </div>
  </div>
</body>
</html>`))

// SendInvoiceIssued emails the customer that a new invoice was issued.
func (m *Mailer) SendInvoiceIssued(inv *models.Invoice) error {
	if inv.Customer.Email == "" {
		return nil
	}
	data := invoiceEmailData{
		CustomerName:  inv.Customer.FullName,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		Amount:        formatToman(inv.Total),
		Link:          "https://rabik.ir/customer/invoices/" + inv.ID,
	}
	var body bytes.Buffer
	if err := invoiceIssuedTmpl.Execute(&body, data); err != nil {
		return err
	}
	subject := fmt.Sprintf("فاکتور %s - رابیک", inv.InvoiceNumber)
	return m.send(inv.Customer.Email, subject, body.String())
}

// SendDueReminder emails the customer that an unpaid invoice is close to
// its due date.
func (m *Mailer) SendDueReminder(inv *models.Invoice, daysLeft int) error {
	if inv.Customer.Email == "" {
		return nil
	}
	data := invoiceEmailData{
		CustomerName:  inv.Customer.FullName,
		InvoiceNumber: inv.InvoiceNumber,
		Amount:        formatToman(inv.Total),
		Link:          "https://rabik.ir/customer/invoices/" + inv.ID,
		DaysLeft:      daysLeft,
	}
	var body bytes.Buffer
	if err := reminderTmpl.Execute(&body, data); err != nil {
		return err
	}
	subject := fmt.Sprintf("یادآوری سررسید فاکتور %s", inv.InvoiceNumber)
	return m.send(inv.Customer.Email, subject, body.String())
}
