// Command initdb drops and recreates the users table.
package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"vulnsite/internal/config"
	"vulnsite/internal/logging"
	"vulnsite/internal/repository/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewUserRepository(db, sqlite.WithLogger(logger))
	if err := repo.Reset(context.Background()); err != nil {
		logger.Fatalf("reset users table: %v", err)
	}

	logger.Infof("users table recreated in %s", cfg.Database.Path)
}
