package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

func goodRow() models.RawRow {
	return models.RawRow{
		Date:     "Jun 16, 2025",
		Open:     "197.30",
		High:     "198.69",
		Low:      "196.56",
		Close:    "198.42",
		AdjClose: "198.42",
		Volume:   "43020700",
	}
}

func TestValidateBatchShape(t *testing.T) {
	if err := Validate(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{goodRow()}}); err != nil {
		t.Errorf("Expected valid batch, got %v", err)
	}

	if err := Validate(models.RawBatch{Symbol: "AAPL"}); err == nil {
		t.Error("Expected error for missing prices collection")
	}
	if err := Validate(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{}}); err == nil {
		t.Error("Expected error for empty prices collection")
	}
	if err := Validate(models.RawBatch{Prices: []models.RawRow{goodRow()}}); err == nil {
		t.Error("Expected error for batch without symbol")
	}
}

func TestTransformGoodBatch(t *testing.T) {
	records, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{goodRow()}})
	if err != nil {
		t.Fatalf("Failed to transform batch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", rec.Symbol)
	}
	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if !rec.Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, rec.Date)
	}
	if rec.Open != 197.30 || rec.High != 198.69 || rec.Low != 196.56 || rec.Close != 198.42 {
		t.Errorf("Unexpected OHLC values: %+v", rec)
	}
	if rec.Volume != 43020700 {
		t.Errorf("Expected volume 43020700, got %d", rec.Volume)
	}
}

func TestTransformMissingFields(t *testing.T) {
	row := goodRow()
	row.Open = ""
	row.Volume = " "

	_, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{row}})
	if err == nil {
		t.Fatal("Expected error for missing fields")
	}
	// Fields listed in column order, so the same input yields the same
	// diagnostic every run.
	if msg := err.Error(); !strings.Contains(msg, "open, volume") {
		t.Errorf("Expected missing fields named in column order, got %q", msg)
	}
}

func TestTransformUnparseableValues(t *testing.T) {
	cases := map[string]func(*models.RawRow){
		"date":   func(r *models.RawRow) { r.Date = "2025-06-16" },
		"open":   func(r *models.RawRow) { r.Open = "abc" },
		"volume": func(r *models.RawRow) { r.Volume = "12.5.3" },
	}
	for field, mutate := range cases {
		row := goodRow()
		mutate(&row)
		_, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{row}})
		if err == nil {
			t.Errorf("Expected error for bad %s", field)
		}
	}
}

func TestTransformRejectsOHLCViolations(t *testing.T) {
	violations := []models.RawRow{
		{Date: "Jun 16, 2025", Open: "10", High: "9", Low: "8", Close: "9", AdjClose: "9", Volume: "1"},   // high < open
		{Date: "Jun 16, 2025", Open: "9", High: "9.5", Low: "8", Close: "10", AdjClose: "10", Volume: "1"}, // high < close
		{Date: "Jun 16, 2025", Open: "9", High: "8", Low: "8.5", Close: "8", AdjClose: "8", Volume: "1"},  // high < low
		{Date: "Jun 16, 2025", Open: "9", High: "11", Low: "10", Close: "10.5", AdjClose: "10.5", Volume: "1"}, // low > open
		{Date: "Jun 16, 2025", Open: "11", High: "11", Low: "10", Close: "9", AdjClose: "9", Volume: "1"}, // low > close
	}

	for i, row := range violations {
		_, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{row}})
		if err == nil {
			t.Errorf("Case %d: expected OHLC violation to be rejected", i)
			continue
		}
		if !strings.Contains(err.Error(), "OHLC") {
			t.Errorf("Case %d: expected OHLC in error, got %q", i, err.Error())
		}
	}
}

func TestTransformRejectsNegativeValues(t *testing.T) {
	row := goodRow()
	row.Volume = "-5"
	if _, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{row}}); err == nil {
		t.Error("Expected error for negative volume")
	}

	row = goodRow()
	row.Open = "-1"
	if _, err := Transform(models.RawBatch{Symbol: "AAPL", Prices: []models.RawRow{row}}); err == nil {
		t.Error("Expected error for negative price")
	}
}

func TestTransformNormalizesBatchSymbol(t *testing.T) {
	records, err := Transform(models.RawBatch{Symbol: "aapl", Prices: []models.RawRow{goodRow()}})
	if err != nil {
		t.Fatalf("Failed to transform batch: %v", err)
	}
	if records[0].Symbol != "AAPL" {
		t.Errorf("Expected normalized symbol AAPL, got %s", records[0].Symbol)
	}
}
