package migration

import (
	"log"

	"gorm.io/gorm"
)

// LogIndexStatements are the composite indexes used by the status page and retention job
var LogIndexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_app_logs_component_level ON app_logs(component, level)",
	"CREATE INDEX IF NOT EXISTS idx_app_logs_level_timestamp ON app_logs(level, timestamp)",
	"CREATE INDEX IF NOT EXISTS idx_app_logs_request ON app_logs(request_id) WHERE request_id IS NOT NULL AND request_id <> ''",
}

// AddLogIndexes adds composite indexes to the app_logs table
func AddLogIndexes(db *gorm.DB) error {
	log.Println("Running migration: Add composite indexes to app_logs table...")

	if !db.Migrator().HasTable(&AppLogMigration{}) {
		log.Println("app_logs table missing, skipping index creation")
		return nil
	}

	for _, stmt := range LogIndexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	log.Println("Log index migration completed successfully!")
	return nil
}

// AppLogMigration is a temporary struct for migration table checks
type AppLogMigration struct {
	Component string `gorm:"column:component"`
	RequestID string `gorm:"column:request_id"`
	Path      string `gorm:"column:path"`
}

// TableName returns the table name for migration checks
func (AppLogMigration) TableName() string {
	return "app_logs"
}
