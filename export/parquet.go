package export

import (
	"github.com/parquet-go/parquet-go"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// priceRow is the flat schema written to parquet files.
type priceRow struct {
	Symbol   string  `parquet:"symbol"`
	Date     int64   `parquet:"date"` // unix seconds
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	AdjClose float64 `parquet:"adj_close"`
	Volume   int64   `parquet:"volume"`
}

type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(records []models.PriceRecord, path string) error {
	rows := make([]priceRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, priceRow{
			Symbol:   r.Symbol,
			Date:     r.Date.Unix(),
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			AdjClose: r.AdjClose,
			Volume:   r.Volume,
		})
	}
	return parquet.WriteFile(path, rows)
}
