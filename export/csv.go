package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// CSVSaver writes records with a symbol,date,open,high,low,close,adj_close,volume header.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(records []models.PriceRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"symbol", "date", "open", "high", "low", "close", "adj_close", "volume"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{
			r.Symbol,
			r.Date.Format("2006-01-02"),
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			floatStr(r.AdjClose),
			strconv.FormatInt(r.Volume, 10),
		}); err != nil {
			return err
		}
	}
	return nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
