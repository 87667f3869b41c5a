package migration

import (
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"go.uber.org/fx"
)

// Module applies pending migrations on startup when auto migrate is enabled
var Module = fx.Module("migrations",
	fx.Invoke(func(db *postgres.DB, cfg *config.Configuration, log *logger.Logger) error {
		if !cfg.Postgres.AutoMigrate {
			return nil
		}
		log.Info("applying database migrations")
		return Up(db.DB.DB)
	}),
)
