package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/database"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/events"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/fetcher"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ingest"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/parser"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ratelimit"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/scheduler"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/tracker"
)

var workerCMD = &cobra.Command{
	Use:   "worker",
	Short: "Run the background worker loops",
	Long: `Run the scheduled background loops: periodic price updates for all
tracked stocks, raw file processing, and dead letter requeueing. Runs until
interrupted.`,
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

		var cache fetcher.Cache
		if cfg.Cache.Backend == "redis" {
			client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
			cache = fetcher.NewRedisCache(client, cfg.CacheTTL())
		} else {
			fsCache, err := fetcher.NewFSCache(cfg.Dirs.Cache, cfg.CacheTTL())
			if err != nil {
				logger.Fatal("Failed to create cache", zap.Error(err))
			}
			cache = fsCache
		}

		p := parser.New(logger)
		limiter := ratelimit.New(cfg.Fetch.RateLimit.MaxRequests, cfg.RateLimitWindow())
		retriever, err := fetcher.New(fetcher.Config{
			BaseURL:    cfg.Fetch.BaseURL,
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    cfg.FetchTimeout(),
			MaxRetries: cfg.Fetch.MaxRetries,
			RetryDelay: cfg.RetryDelay(),
			PageSize:   cfg.Fetch.PageSize,
			RawDir:     cfg.Dirs.Raw,
		}, cache, limiter, p, logger)
		if err != nil {
			logger.Fatal("Failed to create retriever", zap.Error(err))
		}

		var pub events.Publisher = events.Nop{}
		if cfg.Kafka.Enabled {
			kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
			defer kp.Close()
			pub = kp
		}

		loader := ingest.NewLoader(db, pub, logger)
		processor, err := ingest.NewProcessor(ingest.Dirs{
			Raw:        cfg.Dirs.Raw,
			Parsed:     cfg.Dirs.Parsed,
			DeadLetter: cfg.Dirs.DeadLetter,
		}, p, loader, logger)
		if err != nil {
			logger.Fatal("Failed to create processor", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tr := tracker.New(db, logger)
		sched := scheduler.New(ctx, scheduler.Config{
			UpdateInterval:      cfg.UpdateInterval(),
			FileProcessInterval: cfg.FileProcessInterval(),
			DeadLetterInterval:  cfg.DeadLetterInterval(),
			HistoryDays:         cfg.Fetch.HistoryDays,
		}, tr, retriever, processor, logger)

		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
		logger.Info("Worker started")

		<-ctx.Done()
		logger.Info("Shutting down worker")
		sched.Stop()
	},
}
