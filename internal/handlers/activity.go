package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// logActivity appends one audit row for the current request's user. Audit
// failures are logged and never fail the request.
func logActivity(db *gorm.DB, c *gin.Context, entityType, entityID, action, description string, meta models.Metadata) {
	entry := models.ActivityLog{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Meta:        meta,
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(string); ok {
			entry.UserID = &id
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		slog.Warn("failed to write activity log", "entity", entityType, "action", action, "error", err)
	}
}

// ActivityHandler serves the admin audit trail.
type ActivityHandler struct {
	db *gorm.DB
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{db: db}
}

// List returns audit entries newest first, filterable by entity.
func (h *ActivityHandler) List(c *gin.Context) {
	query := h.db.Model(&models.ActivityLog{}).Order("created_at desc")

	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := c.Query("entity_id"); entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count activity"})
		return
	}

	var entries []models.ActivityLog
	if err := query.Scopes(Paginate(c)).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch activity"})
		return
	}
	if entries == nil {
		entries = make([]models.ActivityLog, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, entries, totalRows))
}
