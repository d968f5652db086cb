package export

import (
	"encoding/json"
	"os"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

// JSONSaver writes records as an indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(records []models.PriceRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
