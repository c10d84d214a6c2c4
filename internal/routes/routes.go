package routes

import (
	"github.com/AGhilHz/rabik-crm/internal/handlers"
	"github.com/AGhilHz/rabik-crm/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Customers     *handlers.CustomerHandler
	Projects      *handlers.ProjectHandler
	Invoices      *handlers.InvoiceHandler
	Tickets       *handlers.TicketHandler
	Notifications *handlers.NotificationHandler
	Automation    *handlers.AutomationHandler
	Dashboard     *handlers.DashboardHandler
	Content       *handlers.ContentHandler
	Reports       *handlers.ReportHandler
	Activity      *handlers.ActivityHandler
}

// Register mounts the full API surface. Three tiers: public marketing
// routes, authenticated routes and the admin-only dashboard routes.
func Register(r *gin.Engine, db *gorm.DB, rdb *redis.Client, jwtKey []byte, h Handlers) {
	// Public surface: marketing content, contact form, auth, and the
	// payment gateway callback (the gateway redirects the browser here
	// without our session cookie).
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Auth.Register)
		public.POST("/auth/login", h.Auth.Login)

		public.GET("/services", h.Content.ListServices)
		public.GET("/portfolio", h.Content.ListPortfolio)
		public.GET("/blog", h.Content.ListPosts)
		public.GET("/blog/:slug", h.Content.GetPost)
		public.GET("/faq", h.Content.ListFAQ)
		public.POST("/contact", h.Content.SubmitContact)

		public.GET("/payments/callback", h.Invoices.PaymentCallback)
	}

	auth := r.Group("/api", middleware.Auth(db, rdb, jwtKey))
	{
		auth.POST("/auth/logout", h.Auth.Logout)
		auth.GET("/auth/me", h.Auth.Me)

		auth.GET("/invoices", h.Invoices.List)
		auth.GET("/invoices/:id", h.Invoices.Get)
		auth.GET("/invoices/:id/print", h.Invoices.Print)
		auth.POST("/invoices/:id/pay", h.Invoices.Pay)

		auth.GET("/tickets", h.Tickets.List)
		auth.POST("/tickets", h.Tickets.Create)
		auth.GET("/tickets/:id", h.Tickets.Get)
		auth.POST("/tickets/:id/messages", h.Tickets.PostMessage)
		auth.GET("/tickets/:id/ws", h.Tickets.Subscribe)

		auth.GET("/notifications", h.Notifications.List)
		auth.GET("/notifications/unread-count", h.Notifications.UnreadCount)
		auth.PUT("/notifications/:id/read", h.Notifications.MarkRead)
		// POST, not PUT: a static segment cannot share the PUT tree with
		// the :id wildcard above.
		auth.POST("/notifications/mark-all-read", h.Notifications.MarkAllRead)
		auth.DELETE("/notifications/:id", h.Notifications.Delete)
		auth.GET("/notifications/ws", h.Notifications.Subscribe)
	}

	admin := r.Group("/api/admin", middleware.Auth(db, rdb, jwtKey), middleware.RequireAdmin())
	{
		admin.GET("/dashboard/stats", h.Dashboard.Stats)
		admin.GET("/dashboard/revenue", h.Dashboard.RevenueSeries)

		admin.GET("/customers", h.Customers.List)
		admin.POST("/customers", h.Customers.Create)
		admin.GET("/customers/:id", h.Customers.Get)
		admin.PUT("/customers/:id", h.Customers.Update)
		admin.DELETE("/customers/:id", h.Customers.Delete)

		admin.GET("/projects", h.Projects.List)
		admin.POST("/projects", h.Projects.Create)
		admin.GET("/projects/:id", h.Projects.Get)
		admin.PUT("/projects/:id", h.Projects.Update)
		admin.PUT("/projects/:id/progress", h.Projects.UpdateProgress)
		admin.DELETE("/projects/:id", h.Projects.Delete)

		admin.POST("/invoices", h.Invoices.Create)
		admin.PUT("/invoices/:id", h.Invoices.Update)
		admin.DELETE("/invoices/:id", h.Invoices.Delete)
		admin.POST("/invoices/:id/payments", h.Invoices.RecordPayment)

		admin.PUT("/tickets/:id/status", h.Tickets.SetStatus)
		admin.PUT("/tickets/:id/priority", h.Tickets.SetPriority)

		admin.POST("/automation/check-overdue", h.Automation.CheckOverdue)
		admin.POST("/automation/send-reminders", h.Automation.SendDueReminders)
		admin.GET("/automation/rules", h.Automation.ListRules)
		admin.POST("/automation/rules", h.Automation.CreateRule)
		admin.PUT("/automation/rules/:id", h.Automation.UpdateRule)
		admin.DELETE("/automation/rules/:id", h.Automation.DeleteRule)

		admin.POST("/services", h.Content.CreateService)
		admin.PUT("/services/:id", h.Content.UpdateService)
		admin.DELETE("/services/:id", h.Content.DeleteService)
		admin.POST("/portfolio", h.Content.CreatePortfolioItem)
		admin.PUT("/portfolio/:id", h.Content.UpdatePortfolioItem)
		admin.DELETE("/portfolio/:id", h.Content.DeletePortfolioItem)
		admin.POST("/blog", h.Content.CreatePost)
		admin.PUT("/blog/:id", h.Content.UpdatePost)
		admin.DELETE("/blog/:id", h.Content.DeletePost)
		admin.POST("/faq", h.Content.CreateFAQItem)
		admin.PUT("/faq/:id", h.Content.UpdateFAQItem)
		admin.DELETE("/faq/:id", h.Content.DeleteFAQItem)
		admin.GET("/contact-messages", h.Content.ListContactMessages)
		admin.PUT("/contact-messages/:id/read", h.Content.MarkContactRead)

		admin.GET("/reports/invoices.xlsx", h.Reports.ExportInvoices)
		admin.GET("/reports/payments.xlsx", h.Reports.ExportPayments)

		admin.GET("/activity", h.Activity.List)
	}
}
