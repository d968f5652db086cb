package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/database"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/events"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ingest"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/parser"
)

var ingestCMD = &cobra.Command{
	Use:   "ingest [raw-directory]",
	Short: "Process queued raw price files once and exit",
	Long: `Parse, validate, and load every raw HTML file waiting in the raw
directory. Files that fail are moved to the dead letter directory; files
that succeed are moved to the parsed directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer logger.Sync()

		if len(args) == 1 {
			cfg.Dirs.Raw = args[0]
		}

		db, err := database.Connect(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}

		loader := ingest.NewLoader(db, events.Nop{}, logger)
		processor, err := ingest.NewProcessor(ingest.Dirs{
			Raw:        cfg.Dirs.Raw,
			Parsed:     cfg.Dirs.Parsed,
			DeadLetter: cfg.Dirs.DeadLetter,
		}, parser.New(logger), loader, logger)
		if err != nil {
			logger.Fatal("Failed to create processor", zap.Error(err))
		}

		logger.Info("Processing raw files", zap.String("dir", cfg.Dirs.Raw))
		if err := processor.ProcessRawFiles(context.Background()); err != nil {
			logger.Fatal("Failed to process raw files", zap.Error(err))
		}

		fmt.Println("Raw file processing completed successfully!")
	},
}
