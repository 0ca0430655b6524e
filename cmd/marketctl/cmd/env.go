package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/app"
	"github.com/usedgoods/marketplace/internal/config"
	"github.com/usedgoods/marketplace/internal/db"
	"github.com/usedgoods/marketplace/internal/logger"
	"github.com/usedgoods/marketplace/internal/storage"
)

func openDB() (*config.Config, *sqlx.DB, error) {
	cfg := config.LoadMaintenance()
	logger.Init(cfg.IsDevelopment(), "")

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, database, nil
}

// openApp opens the database and storage and wires the services without
// applying migrations.
func openApp() (*app.App, error) {
	cfg, database, err := openDB()
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return app.Wire(cfg, database, fileStorage), nil
}
