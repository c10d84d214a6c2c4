package handlers

import (
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CustomerHandler serves the admin customer CRUD.
type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// List returns customers, paginated, filterable by status and a free
// text query over name, email and company.
func (h *CustomerHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Customer{}).Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ? OR company_name ILIKE ?", like, like, like)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count customers"})
		return
	}

	var customers []models.Customer
	if err := query.Scopes(Paginate(c)).Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch customers"})
		return
	}
	if customers == nil {
		customers = make([]models.Customer, 0)
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(c, customers, totalRows))
}

// Get returns one customer with headline counters for the profile page.
func (h *CustomerHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	var projectCount, invoiceCount, ticketCount int64
	h.db.Model(&models.Project{}).Where("customer_id = ?", id).Count(&projectCount)
	h.db.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoiceCount)
	h.db.Model(&models.SupportTicket{}).Where("customer_id = ?", id).Count(&ticketCount)

	c.JSON(http.StatusOK, gin.H{
		"customer":       customer,
		"projects_count": projectCount,
		"invoices_count": invoiceCount,
		"tickets_count":  ticketCount,
	})
}

type customerPayload struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	NationalID  string `json:"national_id"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

// Create adds a customer from the admin form.
func (h *CustomerHandler) Create(c *gin.Context) {
	var payload customerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer := models.Customer{
		FullName:    payload.FullName,
		Email:       payload.Email,
		Phone:       payload.Phone,
		CompanyName: payload.CompanyName,
		NationalID:  payload.NationalID,
		Address:     payload.Address,
		City:        payload.City,
		PostalCode:  payload.PostalCode,
		Status:      payload.Status,
		Notes:       payload.Notes,
	}
	if err := h.db.Create(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create customer"})
		return
	}
	logActivity(h.db, c, "customer", customer.ID, "created", "مشتری جدید ثبت شد", models.Metadata{"full_name": customer.FullName})
	c.JSON(http.StatusCreated, customer)
}

// Update edits a customer and refreshes its activity timestamp.
func (h *CustomerHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	var payload customerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer.FullName = payload.FullName
	customer.Email = payload.Email
	customer.Phone = payload.Phone
	customer.CompanyName = payload.CompanyName
	customer.NationalID = payload.NationalID
	customer.Address = payload.Address
	customer.City = payload.City
	customer.PostalCode = payload.PostalCode
	if payload.Status != "" {
		customer.Status = payload.Status
	}
	customer.Notes = payload.Notes
	customer.LastActivityAt = time.Now()

	if err := h.db.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update customer"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete blocks a customer. Customers are never hard-deleted so their
// invoices, projects and tickets keep a valid owner.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	res := h.db.Model(&models.Customer{}).
		Where("id = ?", id).
		Update("status", models.CustomerStatusBlocked)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not block customer"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}
	logActivity(h.db, c, "customer", id, "blocked", "مشتری مسدود شد", nil)
	c.JSON(http.StatusOK, gin.H{"message": "customer blocked"})
}
