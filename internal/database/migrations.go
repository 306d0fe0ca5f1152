package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/venturelink/venturelink/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Session{},
		&models.ConnectionRequest{},
		&models.Deal{},
		&models.Investment{},
		&models.Meeting{},
		&models.Conversation{},
		&models.Message{},
		&models.Document{},
		&models.DocumentShare{},
		&models.Notification{},
	)
}

// Migrate is a convenience helper used during application start-up.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
