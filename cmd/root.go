package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/config"
)

var configPath string

var rootCMD = &cobra.Command{
	Use:   "creampie",
	Short: "Stock tracking and price history ingestion service",
	Long: `A backend service for tracking stocks and ingesting their price history.
It fetches historical price pages from the upstream provider, parses and
validates them, and stores the records for querying through a REST API.`,
}

func Execute() {
	err := rootCMD.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCMD.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCMD.AddCommand(serverCMD)
	rootCMD.AddCommand(ingestCMD)
	rootCMD.AddCommand(workerCMD)
	rootCMD.AddCommand(fetchCMD)
	rootCMD.AddCommand(exportCMD)
}

// setup loads environment and config, then builds the logger. Shared by
// every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		logCfg.Level = lvl
	}
	log, err := logCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
