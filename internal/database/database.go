package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Регистрирует драйвер "sqlite" без cgo
	_ "modernc.org/sqlite"

	"copyprocloud/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates or updates the schema for all tables the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.CatalogService{},
		&domain.Order{},
		&domain.Payment{},
		&domain.PromoCode{},
		&domain.ChatRoom{},
		&domain.ChatMessage{},
		&domain.NotificationTemplate{},
		&domain.NotificationReminder{},
		&domain.ActivityLog{},
		&domain.SystemSetting{},
	)
}
