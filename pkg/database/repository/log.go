package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/holocron/pkg/database/models"
	"github.com/latoulicious/holocron/pkg/logging"
	"gorm.io/gorm"
)

// LogRepository handles database operations for AppLog model
type LogRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ logging.LogRepository = (*LogRepository)(nil)

func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db, now: time.Now}
}

// SaveLog implements logging.LogRepository
func (r *LogRepository) SaveLog(entry logging.LogEntry) error {
	component := entry.Component
	if component == "" {
		component = "system"
	}

	return r.db.Create(&models.AppLog{
		ID:        uuid.New(),
		Component: component,
		Level:     entry.Level,
		Message:   entry.Message,
		Error:     entry.Error,
		Fields:    entry.Fields,
		RequestID: entry.RequestID,
		Path:      entry.Path,
		Timestamp: r.now(),
	}).Error
}

func (r *LogRepository) GetRecentLogs(limit int) ([]models.AppLog, error) {
	var logs []models.AppLog
	if err := r.db.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *LogRepository) GetLogsByRequestID(requestID string) ([]models.AppLog, error) {
	var logs []models.AppLog
	if err := r.db.Where("request_id = ?", requestID).Order("timestamp ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *LogRepository) CountByLevel(since time.Time) ([]models.LevelCount, error) {
	var counts []models.LevelCount
	if err := r.db.Model(&models.AppLog{}).
		Select("level, COUNT(*) as count").
		Where("timestamp > ?", since).
		Group("level").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// PruneBefore deletes log entries older than cutoff and returns how many were removed
func (r *LogRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", cutoff).Delete(&models.AppLog{})
	return result.RowsAffected, result.Error
}
