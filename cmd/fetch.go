package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/fetcher"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/parser"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ratelimit"
)

var (
	fetchStart string
	fetchEnd   string
)

var fetchCMD = &cobra.Command{
	Use:   "fetch [symbol]",
	Short: "Fetch historical price data for a single symbol",
	Long: `Download historical price pages for the given symbol and queue the
raw HTML in the raw directory for ingestion. Dates use the YYYY-MM-DD format.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer logger.Sync()

		end := time.Now()
		if fetchEnd != "" {
			end, err = time.Parse("2006-01-02", fetchEnd)
			if err != nil {
				logger.Fatal("Invalid end date", zap.String("end", fetchEnd), zap.Error(err))
			}
		}
		start := end.AddDate(0, 0, -cfg.Fetch.HistoryDays)
		if fetchStart != "" {
			start, err = time.Parse("2006-01-02", fetchStart)
			if err != nil {
				logger.Fatal("Invalid start date", zap.String("start", fetchStart), zap.Error(err))
			}
		}

		cache, err := fetcher.NewFSCache(cfg.Dirs.Cache, cfg.CacheTTL())
		if err != nil {
			logger.Fatal("Failed to create cache", zap.Error(err))
		}
		limiter := ratelimit.New(cfg.Fetch.RateLimit.MaxRequests, cfg.RateLimitWindow())
		retriever, err := fetcher.New(fetcher.Config{
			BaseURL:    cfg.Fetch.BaseURL,
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    cfg.FetchTimeout(),
			MaxRetries: cfg.Fetch.MaxRetries,
			RetryDelay: cfg.RetryDelay(),
			PageSize:   cfg.Fetch.PageSize,
			RawDir:     cfg.Dirs.Raw,
		}, cache, limiter, parser.New(logger), logger)
		if err != nil {
			logger.Fatal("Failed to create retriever", zap.Error(err))
		}

		rows, err := retriever.GetHistoricalData(context.Background(), args[0], start, end)
		if err != nil {
			logger.Fatal("Failed to fetch data", zap.Error(err))
		}

		fmt.Printf("Fetched %d rows for %s; raw files queued in %s\n",
			len(rows), args[0], cfg.Dirs.Raw)
	},
}

func init() {
	fetchCMD.Flags().StringVar(&fetchStart, "start", "", "start date (YYYY-MM-DD)")
	fetchCMD.Flags().StringVar(&fetchEnd, "end", "", "end date (YYYY-MM-DD)")
}
