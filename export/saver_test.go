package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

func sampleRecords() []models.PriceRecord {
	return []models.PriceRecord{
		{
			Symbol: "AAPL", Date: time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			Open: 197.30, High: 198.69, Low: 196.56, Close: 198.42,
			AdjClose: 198.42, Volume: 43020700,
		},
		{
			Symbol: "AAPL", Date: time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC),
			Open: 198.50, High: 199.10, Low: 197.80, Close: 198.90,
			AdjClose: 198.90, Volume: 38500000,
		},
	}
}

func TestNewSaverFormats(t *testing.T) {
	for _, format := range []string{"json", "CSV", " parquet "} {
		if NewSaver(format) == nil {
			t.Errorf("Expected saver for format %q", format)
		}
	}
	if NewSaver("xml") != nil {
		t.Error("Expected nil for unsupported format")
	}
}

func TestCSVSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := (CSVSaver{}).Save(sampleRecords(), path); err != nil {
		t.Fatalf("Failed to save CSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "symbol" {
		t.Errorf("Expected symbol header, got %s", rows[0][0])
	}
	if rows[1][7] != "43020700" {
		t.Errorf("Expected volume column, got %s", rows[1][7])
	}
}

func TestJSONSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := (JSONSaver{}).Save(sampleRecords(), path); err != nil {
		t.Fatalf("Failed to save JSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var decoded []models.PriceRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Symbol != "AAPL" {
		t.Errorf("Unexpected decoded output: %+v", decoded)
	}
}
