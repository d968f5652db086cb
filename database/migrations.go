package database

import (
	"fmt"

	"gorm.io/gorm"
)

// OptimizeIndexes creates supplementary indexes for the hot query paths:
// per-symbol date-range reads on price history and the active-symbol scan
// the retrieval loop runs every cycle.
func OptimizeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_price_records_symbol_date
		ON price_records (symbol, date DESC)
	`).Error; err != nil {
		return fmt.Errorf("create price history index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tracked_stocks_active
		ON tracked_stocks (is_active, symbol)
	`).Error; err != nil {
		return fmt.Errorf("create tracked stocks index: %w", err)
	}

	return nil
}
