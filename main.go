package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"

	"product-intel/config"
	"product-intel/fetch"
	"product-intel/services"
	"product-intel/storage"
	"product-intel/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger().WithLevel(utils.ParseLevel(cfg.LogLevel))

	pipeline, err := config.LoadPipeline(cfg.PipelinePath)
	if err != nil {
		logger.Error("Failed to load pipeline: %v", err)
		os.Exit(1)
	}
	if len(pipeline.Products) == 0 && len(pipeline.Listings) == 0 {
		logger.Error("Nothing to analyse: %s lists no products or listings", cfg.PipelinePath)
		os.Exit(1)
	}

	logger.Info("=== Product Intelligence Pipeline starting ===")
	logger.Info("Config: products %d | listings %d | concurrency %d | rate %dms | store %s",
		len(pipeline.Products), len(pipeline.Listings), cfg.MaxConcurrency, cfg.RateLimitMs, cfg.DBDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if cfg.DBDriver == storage.DriverSQLite && cfg.DatabaseURL == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			logger.Error("Failed to create database dir: %v", err)
			os.Exit(1)
		}
	}
	store, err := storage.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Error("Failed to open %s store: %v", cfg.DBDriver, err)
		if cfg.DBDriver == storage.DriverPostgres {
			logger.Error("Make sure Docker is running: docker compose up -d")
		}
		os.Exit(1)
	}
	defer store.Close()

	var cache services.SummaryCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis at %s unavailable, running without cache: %v", cfg.RedisAddr, err)
		} else {
			cache = storage.NewInsightCache(client, cfg.CacheTTL)
			logger.Info("Insight cache: redis %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
		}
	}

	opts := fetch.Options{Timeout: cfg.FetchTimeout, MaxRetries: cfg.MaxRetries, Logger: logger}
	var src services.MarkupSource
	if cfg.UseBrowser {
		browser := fetch.NewBrowserFetcher(opts, cfg.ChromeBin, cfg.BrowserSettle)
		defer browser.Close()
		src = browser
	} else {
		src = fetch.NewHTTPFetcher(opts)
	}

	cleaner := services.NewCleaner(logger, pipeline.SourcePrefixes())
	analyzer := services.NewAnalyzer(logger, pipeline.Selectors, cleaner)
	insightSvc := services.NewInsightService(logger)
	runner := services.NewRunner(logger, analyzer, insightSvc, store, csvWriter, cache, services.RunOptions{
		HistoryDays:   cfg.HistoryDays,
		RecentReviews: cfg.RecentReviews,
	})

	pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs)
	report, err := runner.Run(ctx, src, pool, pipeline.Products, pipeline.Listings)
	if err != nil {
		logger.Error("Pipeline run failed: %v", err)
		os.Exit(1)
	}
	if len(report.Products) == 0 {
		logger.Error("No products survived extraction and cleaning.")
		os.Exit(1)
	}

	insightSvc.Print(report)

	fmt.Printf("  Done. Raw CSV → %s | Analysed data → %s\n\n", cfg.CSVOutputPath, cfg.DBDriver)
}
