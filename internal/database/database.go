package database

import (
	"fmt"
	"log"
	"time"

	"coinpulse/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")

	// Migrations: ensure columns added after the initial schema exist
	if err := ensureProjectSalePrice(db); err != nil {
		log.Printf("Migration warning: %v", err)
	}
	return db, nil
}

// Migrate creates or updates all portal tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Project{},
		&models.MetricsDaily{},
		&models.ProjectTweet{},
		&models.Campaign{},
		&models.Withdrawal{},
		&models.MarketSnapshot{},
		&models.DexMarketSnapshot{},
		&models.CexMarketSnapshot{},
		&models.WhaleEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ensureProjectSalePrice adds sale_price_usd to projects if missing
// (column introduced after early deployments were already migrated).
func ensureProjectSalePrice(db *gorm.DB) error {
	if db.Migrator().HasColumn(&models.Project{}, "sale_price_usd") {
		return nil
	}
	if err := db.Migrator().AddColumn(&models.Project{}, "SalePriceUsd"); err != nil {
		return fmt.Errorf("failed adding sale_price_usd column: %w", err)
	}
	log.Println("Added column sale_price_usd to projects")
	return nil
}
