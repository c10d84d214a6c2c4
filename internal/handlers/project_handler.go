package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/internal/automation"
	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler serves project CRUD plus progress updates.
type ProjectHandler struct {
	db         *gorm.DB
	automation *automation.Service
}

func NewProjectHandler(db *gorm.DB, auto *automation.Service) *ProjectHandler {
	return &ProjectHandler{db: db, automation: auto}
}

func (h *ProjectHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Project{}).Preload("Customer").Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count projects"})
		return
	}

	var projects []models.Project
	if err := query.Scopes(Paginate(c)).Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch projects"})
		return
	}
	if projects == nil {
		projects = make([]models.Project, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, projects, totalRows))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	var project models.Project
	if err := h.db.Preload("Customer").First(&project, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, project)
}

type projectPayload struct {
	CustomerID  string     `json:"customer_id" binding:"required"`
	ServiceID   *string    `json:"service_id"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	AgreedPrice *int64     `json:"agreed_price"`
	AssignedTo  *string    `json:"assigned_to"`
	Notes       string     `json:"notes"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var payload projectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{
		CustomerID:  payload.CustomerID,
		ServiceID:   payload.ServiceID,
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		StartDate:   payload.StartDate,
		DueDate:     payload.DueDate,
		AgreedPrice: payload.AgreedPrice,
		AssignedTo:  payload.AssignedTo,
		Notes:       payload.Notes,
	}
	if err := h.db.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create project"})
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var project models.Project
	if err := h.db.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	var payload projectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project.ServiceID = payload.ServiceID
	project.Title = payload.Title
	project.Description = payload.Description
	if payload.Status != "" {
		project.Status = payload.Status
		if payload.Status == models.ProjectStatusCompleted && project.CompletedDate == nil {
			now := time.Now()
			project.CompletedDate = &now
		}
	}
	if payload.Priority != "" {
		project.Priority = payload.Priority
	}
	project.StartDate = payload.StartDate
	project.DueDate = payload.DueDate
	project.AgreedPrice = payload.AgreedPrice
	project.AssignedTo = payload.AssignedTo
	project.Notes = payload.Notes

	if err := h.db.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update project"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProgress clamps the percentage to [0,100], persists it and lets
// the automation service decide whether a milestone notification is due.
func (h *ProjectHandler) UpdateProgress(c *gin.Context) {
	id := c.Param("id")
	var payload struct {
		Progress int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress := payload.Progress
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	updates := map[string]any{"progress": progress}
	if progress >= 100 {
		updates["status"] = models.ProjectStatusCompleted
		updates["completed_date"] = time.Now()
	}

	res := h.db.Model(&models.Project{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update progress"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if err := h.automation.NotifyProjectMilestone(id); err != nil {
		slog.Warn("milestone notification failed", "project_id", id, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "progress updated", "progress": progress})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	res := h.db.Delete(&models.Project{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete project"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
