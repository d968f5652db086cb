// Package tracker manages the set of symbols under active monitoring.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/faults"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

const disabledMessage = "tracking disabled by administrator"

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Track registers a symbol for monitoring. The call is idempotent: an
// existing row (active or disabled) is returned unchanged; only a brand-new
// symbol creates a row, active with status pending.
func (s *Service) Track(ctx context.Context, symbol string) (*models.TrackedStock, error) {
	sym, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var stock models.TrackedStock
	err = s.db.WithContext(ctx).Where("symbol = ?", sym).First(&stock).Error
	if err == nil {
		return &stock, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up %s: %w", sym, err)
	}

	stock = models.TrackedStock{
		Symbol:         sym,
		IsActive:       true,
		LastPullStatus: models.PullStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&stock).Error; err != nil {
		// A concurrent Track may have inserted the row between the lookup
		// and the create; the unique index makes the re-query authoritative.
		var existing models.TrackedStock
		if lookupErr := s.db.WithContext(ctx).Where("symbol = ?", sym).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("track %s: %w", sym, err)
	}
	s.log.Info("tracking new symbol", zap.String("symbol", sym))
	return &stock, nil
}

// Deactivate stops monitoring a symbol without deleting it: the row stays for
// audit with status disabled and an explanatory message.
func (s *Service) Deactivate(ctx context.Context, symbol string) (*models.TrackedStock, error) {
	sym, err := models.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var stock models.TrackedStock
	if err := s.db.WithContext(ctx).Where("symbol = ?", sym).First(&stock).Error; err != nil {
		return nil, fmt.Errorf("look up %s: %w", sym, err)
	}

	msg := disabledMessage
	stock.IsActive = false
	stock.LastPullStatus = models.PullStatusDisabled
	stock.ErrorMessage = &msg
	if err := s.db.WithContext(ctx).Save(&stock).Error; err != nil {
		return nil, fmt.Errorf("deactivate %s: %w", sym, err)
	}
	s.log.Info("deactivated symbol", zap.String("symbol", sym))
	return &stock, nil
}

// List returns every tracked stock, active or not, ordered by symbol.
func (s *Service) List(ctx context.Context) ([]models.TrackedStock, error) {
	var stocks []models.TrackedStock
	if err := s.db.WithContext(ctx).Order("symbol").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("list tracked stocks: %w", err)
	}
	return stocks, nil
}

// ActiveSymbols returns the symbols currently under monitoring, in symbol
// order for deterministic loop behavior. A schema-level failure here means
// the application is miswired and is classified critical so the retrieval
// loop stops instead of spinning.
func (s *Service) ActiveSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).
		Model(&models.TrackedStock{}).
		Where("is_active = ?", true).
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		if isFatalDBError(err) {
			return nil, faults.Critical(fmt.Errorf("list active symbols: %w", err))
		}
		return nil, fmt.Errorf("list active symbols: %w", err)
	}
	return symbols, nil
}

// isFatalDBError reports failures no retry will fix: a miswired gorm handle,
// or a postgres error whose SQLSTATE names a schema or privilege problem.
func isFatalDBError(err error) bool {
	if errors.Is(err, gorm.ErrInvalidDB) || errors.Is(err, gorm.ErrUnsupportedDriver) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501", // insufficient_privilege
			"42P01", // undefined_table
			"28000", // invalid_authorization_specification
			"28P01": // invalid_password
			return true
		}
	}
	return false
}

// RecordPullResult commits the outcome of one fetch attempt for one symbol.
// Failures set the status and message; success clears the message.
func (s *Service) RecordPullResult(ctx context.Context, symbol string, pullErr error) error {
	now := time.Now().UTC()
	updates := map[string]any{
		"last_pull_date": &now,
	}
	if pullErr != nil {
		updates["last_pull_status"] = models.PullStatusFailed
		updates["error_message"] = pullErr.Error()
	} else {
		updates["last_pull_status"] = models.PullStatusSuccess
		updates["error_message"] = nil
	}

	res := s.db.WithContext(ctx).
		Model(&models.TrackedStock{}).
		Where("symbol = ?", symbol).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("record pull result for %s: %w", symbol, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record pull result for %s: no tracked row", symbol)
	}
	return nil
}
