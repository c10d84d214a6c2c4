package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardHandler serves the admin dashboard counters. The aggregate is
// cached in Redis for a minute; with a nil client every request hits the
// database.
type DashboardHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewDashboardHandler(db *gorm.DB, rdb *redis.Client) *DashboardHandler {
	return &DashboardHandler{db: db, rdb: rdb}
}

type dashboardStats struct {
	Customers       int64 `json:"customers"`
	ActiveCustomers int64 `json:"active_customers"`
	Projects        int64 `json:"projects"`
	ActiveProjects  int64 `json:"active_projects"`
	Invoices        int64 `json:"invoices"`
	UnpaidInvoices  int64 `json:"unpaid_invoices"`
	OverdueInvoices int64 `json:"overdue_invoices"`
	OpenTickets     int64 `json:"open_tickets"`
	MonthRevenue    int64 `json:"month_revenue"`
	TotalRevenue    int64 `json:"total_revenue"`
}

// Stats returns the headline counters for the admin dashboard.
func (h *DashboardHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var stats dashboardStats
			if json.Unmarshal(cached, &stats) == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
		}
	}

	stats, err := h.computeStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := h.rdb.Set(ctx, dashboardCacheKey, data, dashboardCacheTTL).Err(); err != nil {
				slog.Warn("failed to cache dashboard stats", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) computeStats() (*dashboardStats, error) {
	var stats dashboardStats

	if err := h.db.Model(&models.Customer{}).Count(&stats.Customers).Error; err != nil {
		return nil, err
	}
	h.db.Model(&models.Customer{}).Where("status = ?", models.CustomerStatusActive).Count(&stats.ActiveCustomers)
	h.db.Model(&models.Project{}).Count(&stats.Projects)
	h.db.Model(&models.Project{}).Where("status = ?", models.ProjectStatusInProgress).Count(&stats.ActiveProjects)
	h.db.Model(&models.Invoice{}).Count(&stats.Invoices)
	h.db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusUnpaid).Count(&stats.UnpaidInvoices)
	h.db.Model(&models.Invoice{}).Where("status = ?", models.InvoiceStatusOverdue).Count(&stats.OverdueInvoices)
	h.db.Model(&models.SupportTicket{}).
		Where("status IN ?", []string{models.TicketStatusOpen, models.TicketStatusInProgress}).
		Count(&stats.OpenTickets)

	monthStart := time.Now().Format("2006-01") + "-01"
	h.db.Model(&models.Payment{}).
		Where("status = ? AND paid_at >= ?", models.PaymentStatusSuccess, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.MonthRevenue)
	h.db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	return &stats, nil
}

// RevenueSeries returns monthly revenue for the last twelve months.
func (h *DashboardHandler) RevenueSeries(c *gin.Context) {
	type monthRow struct {
		Month   string `json:"month"`
		Revenue int64  `json:"revenue"`
	}

	var rows []monthRow
	err := h.db.Model(&models.Payment{}).
		Select("to_char(paid_at, 'YYYY-MM') AS month, COALESCE(SUM(amount), 0) AS revenue").
		Where("status = ? AND paid_at >= ?", models.PaymentStatusSuccess, time.Now().AddDate(-1, 0, 0)).
		Group("month").
		Order("month asc").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute revenue"})
		return
	}
	if rows == nil {
		rows = make([]monthRow, 0)
	}
	c.JSON(http.StatusOK, gin.H{"series": rows})
}

// InvalidateStatsCache drops the cached aggregate so the next dashboard
// load recomputes.
func (h *DashboardHandler) InvalidateStatsCache(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		slog.Warn("failed to invalidate dashboard cache", "error", err)
	}
}
