package tools

import (
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/latoulicious/holocron/pkg/database"
	"github.com/latoulicious/holocron/pkg/database/models"
)

// DBCheck verifies that the log database is reachable and usable
func DBCheck(databaseURL string, out io.Writer) error {
	fmt.Fprintln(out, "=== PostgreSQL Database Connectivity Check ===")

	if databaseURL == "" {
		fmt.Fprintln(out, "❌ DATABASE_URL is not set")
		return fmt.Errorf("database url is empty")
	}

	fmt.Fprintln(out, "📡 Connecting to database...")
	db, err := database.NewGormDBFromConfig(databaseURL)
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to connect to database: %v\n", err)
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to get underlying database connection: %v\n", err)
		return err
	}
	defer sqlDB.Close()
	fmt.Fprintln(out, "✅ Database connection established")

	fmt.Fprintln(out, "🏓 Testing database ping...")
	if err := sqlDB.Ping(); err != nil {
		fmt.Fprintf(out, "❌ Database ping failed: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Database ping successful")

	var version string
	if err := db.Raw("SELECT version()").Scan(&version).Error; err != nil {
		fmt.Fprintf(out, "❌ Failed to get database version: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ PostgreSQL version: %s\n", version)

	stats := sqlDB.Stats()
	fmt.Fprintln(out, "📊 Connection pool stats:")
	fmt.Fprintf(out, "   - Open connections: %d\n", stats.OpenConnections)
	fmt.Fprintf(out, "   - In use: %d\n", stats.InUse)
	fmt.Fprintf(out, "   - Idle: %d\n", stats.Idle)

	if err := checkLogTable(db, out); err != nil {
		fmt.Fprintf(out, "⚠️  Table check warning: %v\n", err)
	}

	fmt.Fprintln(out, "🔄 Testing transaction capability...")
	if err := testTransactionCapability(db); err != nil {
		fmt.Fprintf(out, "❌ Transaction test failed: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Transaction capability verified")

	start := time.Now()
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Fprintf(out, "❌ Performance test failed: %v\n", err)
		return err
	}
	duration := time.Since(start)
	fmt.Fprintf(out, "✅ Simple query completed in %v\n", duration)
	if duration > 5*time.Second {
		fmt.Fprintln(out, "⚠️  Query took longer than 5 seconds - check network latency")
	}

	fmt.Fprintln(out, "\n=== Database Connectivity Check Complete ===")
	return nil
}

// checkLogTable reports whether app_logs exists and how many rows it holds
func checkLogTable(db *gorm.DB, out io.Writer) error {
	if !db.Migrator().HasTable(&models.AppLog{}) {
		fmt.Fprintln(out, "   ⚠️  app_logs is missing (run the migration command)")
		return nil
	}

	var count int64
	if err := db.Model(&models.AppLog{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count app_logs: %w", err)
	}
	fmt.Fprintf(out, "   📊 app_logs table has %d records\n", count)
	return nil
}

// testTransactionCapability runs a throwaway write inside a rolled-back transaction
func testTransactionCapability(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Exec("CREATE TEMPORARY TABLE test_transaction (id SERIAL PRIMARY KEY, test_data TEXT)").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create temporary table: %w", err)
	}

	if err := tx.Exec("INSERT INTO test_transaction (test_data) VALUES ('test')").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert test data: %w", err)
	}

	var count int64
	if err := tx.Raw("SELECT COUNT(*) FROM test_transaction").Scan(&count).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count test data: %w", err)
	}
	if count != 1 {
		tx.Rollback()
		return fmt.Errorf("unexpected count in transaction: expected 1, got %d", count)
	}

	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
