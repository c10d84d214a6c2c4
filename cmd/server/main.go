package main

import (
	"log/slog"
	"os"

	"github.com/AGhilHz/rabik-crm/config"
	"github.com/AGhilHz/rabik-crm/internal/automation"
	"github.com/AGhilHz/rabik-crm/internal/billing"
	"github.com/AGhilHz/rabik-crm/internal/gateway"
	"github.com/AGhilHz/rabik-crm/internal/handlers"
	"github.com/AGhilHz/rabik-crm/internal/mailer"
	"github.com/AGhilHz/rabik-crm/internal/notify"
	"github.com/AGhilHz/rabik-crm/internal/routes"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using environment as-is")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		slog.Error("DB_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	jwtKey := []byte(cfg.JWTSecret)

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	rdb := config.ConnectRedis(cfg.RedisAddr)

	hub := notify.NewHub()
	go hub.Run()

	notifier := notify.NewService(db, hub)
	billingSvc := billing.NewService(db, notifier)
	automationSvc := automation.NewService(automation.NewStore(db), notifier)
	mail := mailer.New(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From)

	var gw handlers.PaymentGateway
	if cfg.Zarinpal.MerchantID != "" {
		gw = gateway.NewClient(cfg.Zarinpal.MerchantID, cfg.Zarinpal.Sandbox)
	} else {
		slog.Warn("ZARINPAL_MERCHANT_ID not set, online payments disabled")
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(db, rdb, jwtKey, cfg.TokenTTL),
		Customers:     handlers.NewCustomerHandler(db),
		Projects:      handlers.NewProjectHandler(db, automationSvc),
		Invoices:      handlers.NewInvoiceHandler(db, billingSvc, mail, gw, cfg.Zarinpal.CallbackURL),
		Tickets:       handlers.NewTicketHandler(db, hub, automationSvc),
		Notifications: handlers.NewNotificationHandler(notifier, hub),
		Automation:    handlers.NewAutomationHandler(db, automationSvc, mail),
		Dashboard:     handlers.NewDashboardHandler(db, rdb),
		Content:       handlers.NewContentHandler(db),
		Reports:       handlers.NewReportHandler(db),
		Activity:      handlers.NewActivityHandler(db),
	}

	r := gin.Default()
	routes.Register(r, db, rdb, jwtKey, h)

	slog.Info("server starting", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
