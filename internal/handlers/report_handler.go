package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReportHandler generates the Excel exports the accounting side asks for.
type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// ExportInvoices streams the invoice ledger as an .xlsx file, optionally
// filtered by status and issue date range.
func (h *ReportHandler) ExportInvoices(c *gin.Context) {
	query := h.db.Model(&models.Invoice{}).Preload("Customer").Order("issue_date asc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("issue_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("issue_date <= ?", to)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch invoices"})
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close export workbook", "error", err)
		}
	}()

	const sheet = "Invoices"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"شماره فاکتور", "مشتری", "تاریخ صدور", "سررسید", "جمع جزء", "تخفیف", "مالیات", "مبلغ کل", "وضعیت", "تاریخ پرداخت"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	var paidSum, outstandingSum int64
	for row, inv := range invoices {
		paidDate := ""
		if inv.PaidDate != nil {
			paidDate = inv.PaidDate.Format("2006-01-02")
		}
		values := []any{
			inv.InvoiceNumber,
			inv.Customer.FullName,
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			inv.Subtotal,
			inv.Discount,
			inv.Tax,
			inv.Total,
			models.InvoiceStatusLabels[inv.Status],
			paidDate,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}

		switch inv.Status {
		case models.InvoiceStatusPaid:
			paidSum += inv.Total
		case models.InvoiceStatusUnpaid, models.InvoiceStatusOverdue:
			outstandingSum += inv.Total
		}
	}

	summaryRow := len(invoices) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), "جمع پرداخت شده")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow), paidSum)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow+1), "جمع معوق")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", summaryRow+1), outstandingSum)

	filename := fmt.Sprintf("invoices-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("failed to stream invoice export", "error", err)
	}
}

// ExportPayments streams recorded payments as an .xlsx file.
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	query := h.db.Model(&models.Payment{}).Order("created_at asc")

	if from := c.Query("from"); from != "" {
		query = query.Where("paid_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("paid_at <= ?", to)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch payments"})
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close export workbook", "error", err)
		}
	}()

	const sheet = "Payments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"شناسه فاکتور", "مبلغ", "روش پرداخت", "کد پیگیری", "وضعیت", "تاریخ پرداخت"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, p := range payments {
		tracking := ""
		if p.TrackingCode != nil {
			tracking = *p.TrackingCode
		}
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format("2006-01-02 15:04")
		}
		values := []any{
			p.InvoiceID,
			p.Amount,
			models.PaymentMethodLabels[p.PaymentMethod],
			tracking,
			p.Status,
			paidAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("payments-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("failed to stream payment export", "error", err)
	}
}
