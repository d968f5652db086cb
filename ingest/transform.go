package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// ValidationError reports a structural or per-record data-quality failure.
// These are never retried automatically: a bad record is a data problem, not
// a transient fault, so the owning file routes to the dead-letter area.
type ValidationError struct {
	Symbol string
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validate %s: %s: %s", e.Symbol, e.Reason, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("validate %s: %s", e.Symbol, e.Reason)
}

// Validate checks the batch's shape: a known symbol and a present, non-empty
// prices collection.
func Validate(batch models.RawBatch) error {
	if batch.Symbol == "" {
		return &ValidationError{Symbol: "?", Reason: "batch has no symbol"}
	}
	if batch.Prices == nil {
		return &ValidationError{Symbol: batch.Symbol, Reason: "prices collection missing"}
	}
	if len(batch.Prices) == 0 {
		return &ValidationError{Symbol: batch.Symbol, Reason: "prices collection empty"}
	}
	return nil
}

// Transform converts raw rows into typed price records, enforcing field
// presence, numeric parseability, non-negative prices and volume, and the
// OHLC ordering invariant. The first bad record fails the whole batch with
// enough detail to act as a dead-letter diagnostic.
func Transform(batch models.RawBatch) ([]models.PriceRecord, error) {
	sym, err := models.NormalizeSymbol(batch.Symbol)
	if err != nil {
		return nil, &ValidationError{Symbol: batch.Symbol, Reason: err.Error()}
	}

	records := make([]models.PriceRecord, 0, len(batch.Prices))
	for i, row := range batch.Prices {
		rec, err := transformRow(sym, i, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func transformRow(sym string, idx int, row models.RawRow) (models.PriceRecord, error) {
	var rec models.PriceRecord

	if missing := missingFields(row); len(missing) > 0 {
		return rec, &ValidationError{
			Symbol: sym,
			Fields: missing,
			Reason: fmt.Sprintf("row %d has missing fields", idx),
		}
	}

	date, err := time.Parse(models.DateLayout, row.Date)
	if err != nil {
		return rec, &ValidationError{
			Symbol: sym,
			Fields: []string{fmt.Sprintf("date=%q", row.Date)},
			Reason: fmt.Sprintf("row %d has an unparseable date", idx),
		}
	}

	prices := make(map[string]float64, 5)
	for _, f := range []struct {
		name string
		raw  string
	}{
		{"open", row.Open}, {"high", row.High}, {"low", row.Low},
		{"close", row.Close}, {"adj_close", row.AdjClose},
	} {
		v, err := strconv.ParseFloat(stripSeparators(f.raw), 64)
		if err != nil {
			return rec, &ValidationError{
				Symbol: sym,
				Fields: []string{fmt.Sprintf("%s=%q", f.name, f.raw)},
				Reason: fmt.Sprintf("row %d has an unparseable price", idx),
			}
		}
		if v < 0 {
			return rec, &ValidationError{
				Symbol: sym,
				Fields: []string{fmt.Sprintf("%s=%q", f.name, f.raw)},
				Reason: fmt.Sprintf("row %d has a negative price", idx),
			}
		}
		prices[f.name] = v
	}

	volume, err := strconv.ParseInt(stripSeparators(row.Volume), 10, 64)
	if err != nil {
		return rec, &ValidationError{
			Symbol: sym,
			Fields: []string{fmt.Sprintf("volume=%q", row.Volume)},
			Reason: fmt.Sprintf("row %d has an unparseable volume", idx),
		}
	}
	if volume < 0 {
		return rec, &ValidationError{
			Symbol: sym,
			Fields: []string{fmt.Sprintf("volume=%q", row.Volume)},
			Reason: fmt.Sprintf("row %d has a negative volume", idx),
		}
	}

	open, high := prices["open"], prices["high"]
	low, clos := prices["low"], prices["close"]
	if low > open || low > clos || high < open || high < clos || high < low {
		return rec, &ValidationError{
			Symbol: sym,
			Fields: []string{
				fmt.Sprintf("open=%v", open), fmt.Sprintf("high=%v", high),
				fmt.Sprintf("low=%v", low), fmt.Sprintf("close=%v", clos),
			},
			Reason: fmt.Sprintf("row %d violates OHLC ordering", idx),
		}
	}

	rec = models.PriceRecord{
		Symbol:   sym,
		Date:     date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    clos,
		AdjClose: prices["adj_close"],
		Volume:   volume,
	}
	return rec, nil
}

// missingFields reports empty fields in column order so dead-letter
// diagnostics read the same for the same input.
func missingFields(row models.RawRow) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"date", row.Date}, {"open", row.Open}, {"high", row.High},
		{"low", row.Low}, {"close", row.Close},
		{"adj_close", row.AdjClose}, {"volume", row.Volume},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
