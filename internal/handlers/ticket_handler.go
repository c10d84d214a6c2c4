package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/internal/automation"
	"github.com/AGhilHz/rabik-crm/internal/billing"
	"github.com/AGhilHz/rabik-crm/internal/notify"
	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TicketHandler serves the support ticket API: the ticket lifecycle, the
// message thread and the live thread feed.
type TicketHandler struct {
	db         *gorm.DB
	hub        *notify.Hub
	automation *automation.Service
}

func NewTicketHandler(db *gorm.DB, hub *notify.Hub, auto *automation.Service) *TicketHandler {
	return &TicketHandler{db: db, hub: hub, automation: auto}
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == models.RoleAdmin
}

// List returns tickets newest first; customers only see their own.
func (h *TicketHandler) List(c *gin.Context) {
	query := h.db.Model(&models.SupportTicket{}).Preload("Customer").Order("created_at desc")

	if !isAdmin(c) {
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
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count tickets"})
		return
	}

	var tickets []models.SupportTicket
	if err := query.Scopes(Paginate(c)).Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tickets"})
		return
	}
	if tickets == nil {
		tickets = make([]models.SupportTicket, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, tickets, totalRows))
}

func (h *TicketHandler) loadTicket(c *gin.Context) (*models.SupportTicket, bool) {
	var ticket models.SupportTicket
	err := h.db.Preload("Customer").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&ticket, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return nil, false
	}

	if !isAdmin(c) {
		customerID, _ := c.Get("customer_id")
		if customerID != ticket.CustomerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this ticket"})
			return nil, false
		}
		// Internal notes never leave the admin side.
		visible := ticket.Messages[:0]
		for _, msg := range ticket.Messages {
			if !msg.IsInternal {
				visible = append(visible, msg)
			}
		}
		ticket.Messages = visible
	}
	return &ticket, true
}

// Get returns one ticket with its message thread. Customers get the
// thread with internal notes stripped.
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, ok := h.loadTicket(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

type ticketPayload struct {
	CustomerID  string  `json:"customer_id"`
	ProjectID   *string `json:"project_id"`
	Subject     string  `json:"subject" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
}

// Create opens a ticket. Customers always open it for themselves; admins
// must name the customer. The opening description doubles as the first
// thread message, and every admin is notified.
func (h *TicketHandler) Create(c *gin.Context) {
	var payload ticketPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID := payload.CustomerID
	senderType := models.SenderAdmin
	if !isAdmin(c) {
		own, ok := c.Get("customer_id")
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "no customer record for this account"})
			return
		}
		customerID = own.(string)
		senderType = models.SenderCustomer
	}
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
		return
	}

	ticket := models.SupportTicket{
		CustomerID:  customerID,
		ProjectID:   payload.ProjectID,
		Subject:     payload.Subject,
		Description: payload.Description,
		Priority:    payload.Priority,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		number, err := billing.NextTicketNumber(tx)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		if payload.Description == "" {
			return nil
		}
		userID, _ := c.Get("user_id")
		msg := models.TicketMessage{
			TicketID:   ticket.ID,
			SenderType: senderType,
			Message:    payload.Description,
		}
		if id, ok := userID.(string); ok {
			msg.SenderID = &id
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create ticket: " + err.Error()})
		return
	}

	if err := h.automation.NotifyNewTicket(ticket.ID); err != nil {
		slog.Warn("new ticket notification failed", "ticket", ticket.TicketNumber, "error", err)
	}

	logActivity(h.db, c, "ticket", ticket.ID, "created", "تیکت جدید باز شد", models.Metadata{"ticket_number": ticket.TicketNumber})
	c.JSON(http.StatusCreated, ticket)
}

type messagePayload struct {
	Message    string `json:"message" binding:"required"`
	IsInternal bool   `json:"is_internal"`
}

// PostMessage appends to the ticket thread and pushes it to live thread
// subscribers. Admin replies that are not internal notify the customer.
func (h *TicketHandler) PostMessage(c *gin.Context) {
	ticket, ok := h.loadTicket(c)
	if !ok {
		return
	}

	var payload messagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin := isAdmin(c)
	msg := models.TicketMessage{
		TicketID:   ticket.ID,
		Message:    payload.Message,
		SenderType: models.SenderCustomer,
		IsInternal: admin && payload.IsInternal,
	}
	if admin {
		msg.SenderType = models.SenderAdmin
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(string); ok {
			msg.SenderID = &id
		}
	}

	if err := h.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not post message"})
		return
	}

	if !msg.IsInternal {
		h.hub.Publish(notify.TicketTopic(ticket.ID), notify.Event{Type: "ticket_message", Payload: msg})
	}

	if admin && !msg.IsInternal {
		if err := h.automation.NotifyTicketResponse(ticket.CustomerID); err != nil {
			slog.Warn("ticket response notification failed", "ticket", ticket.TicketNumber, "error", err)
		}
	} else if !admin {
		if err := h.automation.NotifyNewTicket(ticket.ID); err != nil {
			slog.Warn("ticket activity notification failed", "ticket", ticket.TicketNumber, "error", err)
		}
	}

	c.JSON(http.StatusCreated, msg)
}

// SetStatus moves a ticket to any status and stamps the resolved/closed
// timestamps the first time those states are entered.
func (h *TicketHandler) SetStatus(c *gin.Context) {
	var payload struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ticket models.SupportTicket
	if err := h.db.First(&ticket, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}

	now := time.Now()
	ticket.Status = payload.Status
	if payload.Status == models.TicketStatusResolved && ticket.ResolvedAt == nil {
		ticket.ResolvedAt = &now
	}
	if payload.Status == models.TicketStatusClosed && ticket.ClosedAt == nil {
		ticket.ClosedAt = &now
	}

	if err := h.db.Save(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update ticket"})
		return
	}

	h.hub.Publish(notify.TicketTopic(ticket.ID), notify.Event{Type: "ticket_status", Payload: ticket})
	c.JSON(http.StatusOK, ticket)
}

// SetPriority changes a ticket's priority.
func (h *TicketHandler) SetPriority(c *gin.Context) {
	var payload struct {
		Priority string `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.db.Model(&models.SupportTicket{}).
		Where("id = ?", c.Param("id")).
		Update("priority", payload.Priority)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update priority"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "priority updated", "priority": payload.Priority})
}

// Subscribe streams a ticket's thread over a websocket.
func (h *TicketHandler) Subscribe(c *gin.Context) {
	ticket, ok := h.loadTicket(c)
	if !ok {
		return
	}
	if err := h.hub.Subscribe(c.Writer, c.Request, notify.TicketTopic(ticket.ID)); err != nil {
		slog.Error("ticket feed upgrade failed", "ticket", ticket.TicketNumber, "error", err)
	}
}
