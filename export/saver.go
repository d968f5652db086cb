// Package export writes stored price history to portable file formats.
package export

import (
	"strings"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// Saver writes a slice of price records to one output file.
type Saver interface {
	Save(records []models.PriceRecord, path string) error
	Extension() string
}

// NewSaver returns the implementation for format (json, csv, parquet), or
// nil when the format is not supported.
func NewSaver(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONSaver{}
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}
