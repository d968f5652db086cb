package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/database"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/export"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
)

var (
	exportFormat string
	exportOut    string
)

var exportCMD = &cobra.Command{
	Use:   "export [symbol]",
	Short: "Export stored price history for a symbol to a file",
	Long:  `Export all stored price records for the given symbol as json, csv, or parquet.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer logger.Sync()

		symbol, err := models.NormalizeSymbol(args[0])
		if err != nil {
			logger.Fatal("Invalid symbol", zap.String("symbol", args[0]), zap.Error(err))
		}

		saver := export.NewSaver(exportFormat)
		if saver == nil {
			logger.Fatal("Unsupported format", zap.String("format", exportFormat))
		}

		db, err := database.Connect(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}

		var records []models.PriceRecord
		if err := db.Where("symbol = ?", symbol).Order("date").Find(&records).Error; err != nil {
			logger.Fatal("Failed to query price records", zap.Error(err))
		}
		if len(records) == 0 {
			logger.Fatal("No price records stored for symbol", zap.String("symbol", symbol))
		}

		out := exportOut
		if out == "" {
			out = strings.ToLower(symbol) + "." + saver.Extension()
		}
		if err := saver.Save(records, out); err != nil {
			logger.Fatal("Failed to write export", zap.Error(err))
		}

		fmt.Printf("Exported %d records for %s to %s\n", len(records), symbol, out)
	},
}

func init() {
	exportCMD.Flags().StringVar(&exportFormat, "format", "csv", "output format: json, csv, or parquet")
	exportCMD.Flags().StringVar(&exportOut, "out", "", "output file path (defaults to <symbol>.<format>)")
}
