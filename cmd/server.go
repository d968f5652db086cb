package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/api"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/database"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/tracker"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the REST API server",
	Long:  `Start the HTTP API server for tracking stocks and querying price history.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer logger.Sync()

		db, err := database.Connect(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}

		tr := tracker.New(db, logger)
		r := api.SetupRoutes(db, tr, logger)

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("Starting server", zap.String("addr", addr))
		if err := r.Run(addr); err != nil {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	},
}
