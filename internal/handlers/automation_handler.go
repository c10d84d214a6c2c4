package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AGhilHz/rabik-crm/internal/automation"
	"github.com/AGhilHz/rabik-crm/internal/mailer"
	"github.com/AGhilHz/rabik-crm/models"
	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AutomationHandler triggers the overdue sweep, the due-date email
// reminders and manages reminder rules.
type AutomationHandler struct {
	db         *gorm.DB
	automation *automation.Service
	mailer     *mailer.Mailer
}

func NewAutomationHandler(db *gorm.DB, auto *automation.Service, m *mailer.Mailer) *AutomationHandler {
	return &AutomationHandler{db: db, automation: auto, mailer: m}
}

// CheckOverdue runs the overdue sweep and reports how many invoices this
// call actually transitioned.
func (h *AutomationHandler) CheckOverdue(c *gin.Context) {
	count, err := h.automation.CheckOverdueInvoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// SendDueReminders emails every customer whose unpaid invoice comes due
// within the next N days (default 3).
func (h *AutomationHandler) SendDueReminders(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "3"))
	if days <= 0 {
		days = 3
	}

	now := time.Now()
	var invoices []models.Invoice
	err := h.db.Preload("Customer").
		Where("status = ? AND due_date > ? AND due_date <= ?",
			models.InvoiceStatusUnpaid, now, now.AddDate(0, 0, days)).
		Find(&invoices).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "could not fetch due invoices"})
		return
	}

	sent := 0
	for i := range invoices {
		daysLeft := int(time.Until(invoices[i].DueDate).Hours()/24) + 1
		if err := h.mailer.SendDueReminder(&invoices[i], daysLeft); err != nil {
			slog.Warn("due reminder email failed", "invoice", invoices[i].InvoiceNumber, "error", err)
			continue
		}
		sent++
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": sent})
}

// ListRules returns every reminder rule, active or not.
func (h *AutomationHandler) ListRules(c *gin.Context) {
	var rules []models.AutomationRule
	if err := h.db.Order("created_at desc").Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

type rulePayload struct {
	Name      string `json:"name" binding:"required"`
	Condition string `json:"condition" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsActive  *bool  `json:"is_active"`
}

func validateCondition(condition string) error {
	_, err := govaluate.NewEvaluableExpression(condition)
	return err
}

// CreateRule stores a reminder rule after checking the condition parses.
func (h *AutomationHandler) CreateRule(c *gin.Context) {
	var payload rulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCondition(payload.Condition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition: " + err.Error()})
		return
	}

	rule := models.AutomationRule{
		Name:      payload.Name,
		Condition: payload.Condition,
		Title:     payload.Title,
		Message:   payload.Message,
		Type:      payload.Type,
		IsActive:  true,
	}
	if payload.IsActive != nil {
		rule.IsActive = *payload.IsActive
	}

	if err := h.db.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create rule"})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule edits a reminder rule, revalidating the condition.
func (h *AutomationHandler) UpdateRule(c *gin.Context) {
	var rule models.AutomationRule
	if err := h.db.First(&rule, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	var payload rulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateCondition(payload.Condition); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition: " + err.Error()})
		return
	}

	rule.Name = payload.Name
	rule.Condition = payload.Condition
	rule.Title = payload.Title
	rule.Message = payload.Message
	if payload.Type != "" {
		rule.Type = payload.Type
	}
	if payload.IsActive != nil {
		rule.IsActive = *payload.IsActive
	}

	if err := h.db.Save(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a reminder rule.
func (h *AutomationHandler) DeleteRule(c *gin.Context) {
	res := h.db.Delete(&models.AutomationRule{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete rule"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rule deleted"})
}
