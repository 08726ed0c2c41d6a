package models

import (
	"time"

	"github.com/google/uuid"
)

// AppLog represents an operational log entry persisted by the logging system
type AppLog struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	Component string                 `gorm:"index;not null;default:'system'" json:"component"` // "http", "swapi", "catalog", "detail", ...
	Level     string                 `gorm:"index;not null" json:"level"`                      // INFO, ERROR, WARN, DEBUG
	Message   string                 `gorm:"type:text;not null" json:"message"`
	Error     string                 `gorm:"type:text" json:"error"`
	Fields    map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"fields"`
	RequestID string                 `gorm:"index" json:"request_id"`
	Path      string                 `gorm:"index" json:"path"`
	Timestamp time.Time              `gorm:"index;not null" json:"timestamp"`
}

// TableName returns the table name for AppLog
func (AppLog) TableName() string {
	return "app_logs"
}

// LevelCount is one row of the per-level aggregation
type LevelCount struct {
	Level string
	Count int64
}
