package main

import (
	"banking_system/internal/config" // Custom import path (Config)
	"banking_system/internal/db"     // Custom import path (Database)
	"banking_system/internal/utils"  // Custom import path (Logger)

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig()                 // Load configuration
	utils.InitLogger(cfg.LogLevel, cfg.IsProd) // Setup logger

	conn, err := db.Open(cfg.DBDriver, cfg.DSN()) // Connect with the configured driver
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}
	logrus.WithField("driver", cfg.DBDriver).Info("Migration completed")
}
