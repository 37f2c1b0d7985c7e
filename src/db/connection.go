package db

import (
	"fmt"

	"github.com/ARQAP/archive-backend/src/config"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Connect opens the Postgres store described by cfg.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), GormConfig(cfg))
	if err != nil {
		logging.Error().Err(err).Msg("error connecting to the database")
		return nil, classify(err)
	}

	logging.Info().Msg("archive database connected")
	return db, nil
}

// GormConfig is shared by the production and test stores.
func GormConfig(cfg config.DatabaseConfig) *gorm.Config {
	return &gorm.Config{
		Logger:         logging.NewGormLogger(cfg.SlowThreshold),
		TranslateError: true,
	}
}

// Migrate creates the archive tables and makes sure every counter row exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	counters := []models.CounterModel{
		{Name: models.CounterBuildings},
		{Name: models.CounterFiles},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counters).Error; err != nil {
		return fmt.Errorf("creating counters: %w", err)
	}
	return nil
}
