package migration

import (
	"fmt"
	"log"

	"github.com/latoulicious/holocron/pkg/database/models"
	"gorm.io/gorm"
)

func RunMigration(db *gorm.DB) error {
	log.Println("Starting migrations...")

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&models.AppLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := AddLogIndexes(db); err != nil {
		return fmt.Errorf("failed to create log indexes: %w", err)
	}

	log.Println("Migrations completed successfully!")
	return nil
}
