package migration

import (
	"log"

	"gorm.io/gorm"
)

// LogIndexNames lists the indexes created by AddLogIndexes
var LogIndexNames = []string{
	"idx_app_logs_component_level",
	"idx_app_logs_level_timestamp",
	"idx_app_logs_request",
}

// RollbackLogIndexes removes the composite indexes from the app_logs table
func RollbackLogIndexes(db *gorm.DB) error {
	log.Println("Running rollback: Remove composite indexes from app_logs table...")

	for _, name := range LogIndexNames {
		if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
			log.Printf("Warning: Failed to drop %s: %v", name, err)
		}
	}

	log.Println("Log index rollback completed successfully!")
	return nil
}
