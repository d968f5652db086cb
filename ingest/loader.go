package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/events"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

const insertBatchSize = 500

// StorageError wraps a persistence failure with the symbol being stored.
// The batch is rolled back in full before this surfaces.
type StorageError struct {
	Symbol string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Symbol, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Loader persists validated price records idempotently: an existing
// (symbol, date) row is updated in place, a missing one inserted. The whole
// batch commits as one transaction.
type Loader struct {
	db     *gorm.DB
	events events.Publisher
	log    *zap.Logger
}

func NewLoader(db *gorm.DB, pub events.Publisher, log *zap.Logger) *Loader {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Loader{db: db, events: pub, log: log}
}

// Store upserts records on (symbol, date) within a single transaction.
// Any failure rolls the entire batch back and surfaces as a StorageError.
func (l *Loader) Store(ctx context.Context, symbol string, records []models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	records = dedupeByKey(records)

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "adj_close", "volume", "updated_at",
			}),
		}).CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return &StorageError{Symbol: symbol, Err: err}
	}

	ev := events.BatchStored{Symbol: symbol, Records: len(records), StoredAt: time.Now().UTC()}
	if err := l.events.PublishBatchStored(ctx, ev); err != nil {
		l.log.Warn("event publish failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return nil
}

// dedupeByKey collapses records sharing a (symbol, date) key, last occurrence
// winning. A document can repeat a trading day, and postgres rejects an upsert
// that touches the same conflict row twice in one statement.
func dedupeByKey(records []models.PriceRecord) []models.PriceRecord {
	type key struct {
		symbol string
		day    int64
	}
	index := make(map[key]int, len(records))
	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		k := key{symbol: r.Symbol, day: r.Date.Unix()}
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
