package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/finleymurray/scarepark-queue-sub000/config"
	"github.com/finleymurray/scarepark-queue-sub000/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Attraction{},
		&model.AttractionState{},
		&model.StatusSample{},
		&model.ThroughputRecord{},
		&model.StatusChangeEvent{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnableTimescale {
		log.Println("TimescaleDB is enabled, applying TimescaleDB-specific DDL...")
		if err := applyTimescaleDDL(db); err != nil {
			log.Printf("Warning: failed to apply some TimescaleDB DDL: %v. Continuing without them.", err)
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyTimescaleDDL turns the two append-only logs into hypertables and adds
// the indexes the analytics queries lean on.
func applyTimescaleDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS timescaledb;",

		"SELECT create_hypertable('status_samples', 'observed_at', if_not_exists => TRUE, migrate_data => TRUE);",
		"SELECT create_hypertable('status_change_events', 'changed_at', if_not_exists => TRUE, migrate_data => TRUE);",

		// Resolution may be missing, but never precedes the change itself.
		"ALTER TABLE status_change_events " +
			"ADD CONSTRAINT status_change_events_resolution_valid CHECK (resolved_at IS NULL OR resolved_at >= changed_at);",

		"CREATE INDEX IF NOT EXISTS idx_status_samples_attraction_observed_at ON status_samples (attraction_id, observed_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_status_change_events_attraction_changed_at ON status_change_events (attraction_id, changed_at DESC);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
