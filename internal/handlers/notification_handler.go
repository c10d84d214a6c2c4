package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AGhilHz/rabik-crm/internal/notify"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves a user's notification feed. Every route is
// scoped to the authenticated user; there is no admin override here.
type NotificationHandler struct {
	notify *notify.Service
	hub    *notify.Hub
}

func NewNotificationHandler(svc *notify.Service, hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{notify: svc, hub: hub}
}

func currentUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	id, _ := userID.(string)
	return id
}

// List returns the user's most recent notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.notify.List(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// UnreadCount returns the badge counter.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notify.UnreadCount(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notify.MarkAsRead(c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// MarkAllRead clears the unread badge.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notify.MarkAllAsRead(currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all marked as read"})
}

// Delete removes one notification from the user's feed.
func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notify.Delete(c.Param("id"), currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// Subscribe streams the user's notification feed over a websocket.
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID := currentUserID(c)
	if err := h.hub.Subscribe(c.Writer, c.Request, notify.UserTopic(userID)); err != nil {
		slog.Error("notification feed upgrade failed", "user_id", userID, "error", err)
	}
}
