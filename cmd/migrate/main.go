package main

import (
	"errors"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/safar/storefront-api/internal/config"
	"github.com/safar/storefront-api/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down]")
	}

	direction := os.Args[1]
	if direction != "up" && direction != "down" {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	m, err := database.NewMigrator(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Create migrator: %v", err)
	}
	defer m.Close()

	if direction == "up" {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Run migrations %s: %v", direction, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Printf("Migrations %s complete, no version applied", direction)
	case err != nil:
		log.Fatalf("Read migration version: %v", err)
	default:
		log.Printf("Migrations %s complete, version %d (dirty=%t)", direction, version, dirty)
	}
}
