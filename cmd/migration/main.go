package main

import (
	"flag"
	"log"

	"github.com/latoulicious/holocron/internal/config"
	"github.com/latoulicious/holocron/pkg/database"
	"github.com/latoulicious/holocron/pkg/database/migration"
)

func main() {
	// Parse the command line arguments
	resetFlag := flag.Bool("reset", false, "Drop every table before migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := database.NewGormDB(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL database: %v", err)
	}

	defer sqlDB.Close()
	log.Println("Connected to database")

	// Reset Flag
	if *resetFlag {
		log.Println("Resetting database...")

		db.Exec("SET session_replication_role = 'replica';")

		// Drop all tables
		err := db.Exec(`
			DO $$ DECLARE
			r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`).Error

		// Reset to normal state
		db.Exec("SET session_replication_role = 'origin';")

		if err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}

		log.Println("Database reset successfully")
	}

	if err := migration.RunMigration(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
}
