package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the human-readable date format used by the external
// historical-prices source (e.g. "Jun 16, 2025").
const DateLayout = "Jan 02, 2006"

// PullStatus describes the outcome of the last data pull for a tracked stock.
type PullStatus string

const (
	PullStatusPending  PullStatus = "pending"
	PullStatusSuccess  PullStatus = "success"
	PullStatusFailed   PullStatus = "failed"
	PullStatusDisabled PullStatus = "disabled"
)

// PriceRecord is one trading day for one symbol. (symbol, date) is the
// natural key: duplicate deliveries update in place, never insert twice.
type PriceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"size:10;uniqueIndex:uidx_symbol_date" json:"symbol"`
	Date      time.Time `gorm:"uniqueIndex:uidx_symbol_date" json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	AdjClose  float64   `gorm:"column:adj_close" json:"adj_close"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TrackedStock is one symbol under active monitoring. Deactivation flips
// IsActive and forces the status to disabled; rows are never deleted.
type TrackedStock struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Symbol         string     `gorm:"size:10;uniqueIndex" json:"symbol"`
	IsActive       bool       `json:"is_active"`
	LastPullDate   *time.Time `json:"last_pull_date"`
	LastPullStatus PullStatus `gorm:"size:16" json:"last_pull_status"`
	ErrorMessage   *string    `json:"error_message"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RawRow is one parsed-but-unvalidated table row. Values stay as strings
// until the transform stage converts them to their typed form.
type RawRow struct {
	Date     string `json:"date"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	AdjClose string `json:"adj_close"`
	Volume   string `json:"volume"`
}

// RawBatch groups the raw rows extracted from one fetched document.
type RawBatch struct {
	Symbol string   `json:"symbol"`
	Prices []RawRow `json:"prices"`
}

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// NormalizeSymbol trims and uppercases a ticker symbol and validates the
// result: 2-10 alphanumeric characters starting with a letter.
func NormalizeSymbol(s string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	if !symbolPattern.MatchString(sym) {
		return "", fmt.Errorf("invalid symbol %q: want 2-10 uppercase alphanumerics starting with a letter", s)
	}
	return sym, nil
}
