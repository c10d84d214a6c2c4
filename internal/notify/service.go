package notify

import (
	"github.com/AGhilHz/rabik-crm/models"
	"gorm.io/gorm"
)

// UserTopic is the feed topic for one user's notifications.
func UserTopic(userID string) string { return "user:" + userID }

// TicketTopic is the feed topic for one ticket's message thread.
func TicketTopic(ticketID string) string { return "ticket:" + ticketID }

// Service is the notification dispatcher: it persists per-user
// notification rows and pushes them to live feed subscribers. Every
// mutation is scoped to the owning user.
type Service struct {
	db  *gorm.DB
	hub *Hub
}

func NewService(db *gorm.DB, hub *Hub) *Service {
	return &Service{db: db, hub: hub}
}

// Create inserts one notification row and pushes it to the recipient's
// feed. An empty typ defaults to "info".
func (s *Service) Create(userID, title, message, typ string) (*models.Notification, error) {
	if typ == "" {
		typ = models.NotificationInfo
	}
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	s.hub.Publish(UserTopic(userID), Event{Type: "notification", Payload: n})
	return &n, nil
}

// Notify is the fire-and-forget form of Create used by the billing and
// automation services.
func (s *Service) Notify(userID, title, message, typ string) error {
	_, err := s.Create(userID, title, message, typ)
	return err
}

// List returns the newest notifications for a user, capped at 50.
func (s *Service) List(userID string) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(50).
		Find(&out).Error
	return out, err
}

// UnreadCount returns the number of unread notifications for a user.
func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flags one notification as read, if it belongs to userID.
func (s *Service) MarkAsRead(id, userID string) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

// MarkAllAsRead flags every unread notification of a user as read.
func (s *Service) MarkAllAsRead(userID string) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Delete removes one notification, if it belongs to userID.
func (s *Service) Delete(id, userID string) error {
	return s.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{}).Error
}
