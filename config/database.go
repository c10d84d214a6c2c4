package config

import (
	"fmt"
	"log/slog"

	"github.com/AGhilHz/rabik-crm/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDB opens the Postgres connection and migrates the schema.
func ConnectDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.SupportTicket{},
		&models.TicketMessage{},
		&models.Notification{},
		&models.AutomationRule{},
		&models.ActivityLog{},
		&models.Service{},
		&models.PortfolioItem{},
		&models.BlogPost{},
		&models.FAQItem{},
		&models.ContactMessage{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	slog.Info("connected to database")
	return db, nil
}
