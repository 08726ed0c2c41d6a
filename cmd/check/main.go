package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/latoulicious/holocron/internal/config"
	"github.com/latoulicious/holocron/pkg/favorites"
	"github.com/latoulicious/holocron/pkg/swapi"
	"github.com/latoulicious/holocron/tools"
)

func main() {
	apiFlag := flag.Bool("api", true, "Check SWAPI connectivity")
	dbFlag := flag.Bool("db", false, "Check the log database")
	favoritesDir := flag.String("favorites", "", "Directory holding a favorites.json export to check against the API")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	failed := false
	if *apiFlag {
		client, err := swapi.NewClient(cfg.API.BaseURL, swapi.WithTimeout(cfg.API.Timeout), swapi.WithMetrics(swapi.NewFetchMetrics()))
		if err != nil {
			log.Fatalf("Failed to create SWAPI client: %v", err)
		}
		if err := tools.APICheck(context.Background(), client, os.Stdout); err != nil {
			failed = true
		}
	}

	if *favoritesDir != "" {
		storage, err := favorites.NewFileStorage(*favoritesDir)
		if err != nil {
			log.Fatalf("Failed to open favorites export: %v", err)
		}
		client, err := swapi.NewClient(cfg.API.BaseURL, swapi.WithTimeout(cfg.API.Timeout))
		if err != nil {
			log.Fatalf("Failed to create SWAPI client: %v", err)
		}
		report, err := tools.FavoritesCheck(context.Background(), client, storage, os.Stdout)
		if err != nil || len(report.Unresolved) > 0 {
			failed = true
		}
	}

	if *dbFlag {
		if err := tools.DBCheck(cfg.Database.URL, os.Stdout); err != nil {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
