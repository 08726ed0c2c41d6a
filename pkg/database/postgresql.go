package database

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNoDSN is returned when log persistence is requested without a database URL
var ErrNoDSN = errors.New("database DSN is not set")

// NewGormDBFromConfig creates a new GORM database connection from config
func NewGormDBFromConfig(databaseURL string) (*gorm.DB, error) {
	return NewGormDB(databaseURL)
}

// NewGormDB creates a new GORM database connection using the provided DSN
func NewGormDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// SQL statement logging would feed back into the log table
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
