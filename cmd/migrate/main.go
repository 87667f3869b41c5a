package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/migration"
	"github.com/flexprice/invoicer/internal/postgres"
)

func main() {
	// Parse command line flags
	down := flag.Int("down", 0, "Revert the given number of migrations instead of applying pending ones")
	version := flag.Bool("version", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	switch {
	case *version:
		v, dirty, err := migration.Version(db.DB.DB)
		if err != nil {
			logger.Fatalw("Failed to read schema version", "error", err)
		}
		fmt.Printf("version %d dirty %t\n", v, dirty)
		return
	case *down > 0:
		logger.Infow("Reverting database migrations", "steps", *down)
		if err := migration.Down(db.DB.DB, *down); err != nil {
			logger.Fatalw("Failed to revert migrations", "error", err)
		}
	default:
		logger.Info("Running database migrations...")
		if err := migration.Up(db.DB.DB); err != nil {
			logger.Fatalw("Failed to apply migrations", "error", err)
		}
	}

	logger.Info("Migration completed successfully")
}
