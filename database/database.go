package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/config"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/faults"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// Connect opens the postgres database, configures the connection pool, and
// runs migrations. A migration failure is critical: the schema being wrong
// is an environment problem no retry will fix.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema and index tuning.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.PriceRecord{}, &models.TrackedStock{}); err != nil {
		return faults.Critical(fmt.Errorf("migrate database: %w", err))
	}
	return OptimizeIndexes(db)
}
