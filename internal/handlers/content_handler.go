package handlers

import (
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContentHandler manages the marketing site content: the service catalog,
// portfolio, blog, FAQ and the public contact form.
type ContentHandler struct {
	db *gorm.DB
}

func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// --- services ---

// ListServices returns the catalog; the public route only sees active
// entries, the dashboard sees everything.
func (h *ContentHandler) ListServices(c *gin.Context) {
	query := h.db.Model(&models.Service{}).Order("sort_order asc, created_at desc")
	if !isAdmin(c) {
		query = query.Where("is_active = ?", true)
	}
	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *ContentHandler) CreateService(c *gin.Context) {
	var service models.Service
	if err := c.ShouldBindJSON(&service); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create service"})
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (h *ContentHandler) UpdateService(c *gin.Context) {
	var service models.Service
	if err := h.db.First(&service, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	if err := c.ShouldBindJSON(&service); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Save(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update service"})
		return
	}
	c.JSON(http.StatusOK, service)
}

func (h *ContentHandler) DeleteService(c *gin.Context) {
	if err := h.db.Delete(&models.Service{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete service"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}

// --- portfolio ---

func (h *ContentHandler) ListPortfolio(c *gin.Context) {
	query := h.db.Model(&models.PortfolioItem{}).Order("created_at desc")
	if !isAdmin(c) {
		query = query.Where("is_published = ?", true)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	var items []models.PortfolioItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch portfolio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": items})
}

func (h *ContentHandler) CreatePortfolioItem(c *gin.Context) {
	var item models.PortfolioItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create portfolio item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ContentHandler) UpdatePortfolioItem(c *gin.Context) {
	var item models.PortfolioItem
	if err := h.db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio item not found"})
		return
	}
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update portfolio item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ContentHandler) DeletePortfolioItem(c *gin.Context) {
	if err := h.db.Delete(&models.PortfolioItem{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete portfolio item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "portfolio item deleted"})
}

// --- blog ---

func (h *ContentHandler) ListPosts(c *gin.Context) {
	query := h.db.Model(&models.BlogPost{}).Order("created_at desc")
	if !isAdmin(c) {
		query = query.Where("is_published = ?", true)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count posts"})
		return
	}
	var posts []models.BlogPost
	if err := query.Scopes(Paginate(c)).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch posts"})
		return
	}
	if posts == nil {
		posts = make([]models.BlogPost, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, posts, totalRows))
}

// GetPost resolves a post by slug; unpublished posts are admin-only.
func (h *ContentHandler) GetPost(c *gin.Context) {
	var post models.BlogPost
	if err := h.db.First(&post, "slug = ?", c.Param("slug")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if !post.IsPublished && !isAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) CreatePost(c *gin.Context) {
	var post models.BlogPost
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(string); ok {
			post.AuthorID = &id
		}
	}
	if post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *ContentHandler) UpdatePost(c *gin.Context) {
	var post models.BlogPost
	if err := h.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *ContentHandler) DeletePost(c *gin.Context) {
	if err := h.db.Delete(&models.BlogPost{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// --- FAQ ---

func (h *ContentHandler) ListFAQ(c *gin.Context) {
	query := h.db.Model(&models.FAQItem{}).Order("sort_order asc, created_at asc")
	if !isAdmin(c) {
		query = query.Where("is_active = ?", true)
	}
	var items []models.FAQItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch FAQ"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faq": items})
}

func (h *ContentHandler) CreateFAQItem(c *gin.Context) {
	var item models.FAQItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create FAQ item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ContentHandler) UpdateFAQItem(c *gin.Context) {
	var item models.FAQItem
	if err := h.db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "FAQ item not found"})
		return
	}
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update FAQ item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ContentHandler) DeleteFAQItem(c *gin.Context) {
	if err := h.db.Delete(&models.FAQItem{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete FAQ item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FAQ item deleted"})
}

// --- contact form ---

type contactPayload struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact is the unauthenticated contact form endpoint.
func (h *ContentHandler) SubmitContact(c *gin.Context) {
	var payload contactPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := models.ContactMessage{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Subject: payload.Subject,
		Message: payload.Message,
	}
	if err := h.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit message"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "پیام شما با موفقیت ارسال شد"})
}

// ListContactMessages returns contact form submissions for the dashboard.
func (h *ContentHandler) ListContactMessages(c *gin.Context) {
	query := h.db.Model(&models.ContactMessage{}).Order("created_at desc")
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count messages"})
		return
	}
	var messages []models.ContactMessage
	if err := query.Scopes(Paginate(c)).Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch messages"})
		return
	}
	if messages == nil {
		messages = make([]models.ContactMessage, 0)
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(c, messages, totalRows))
}

// MarkContactRead flags one contact message as handled.
func (h *ContentHandler) MarkContactRead(c *gin.Context) {
	res := h.db.Model(&models.ContactMessage{}).
		Where("id = ?", c.Param("id")).
		Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark message"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}
