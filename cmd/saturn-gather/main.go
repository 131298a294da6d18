package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"saturn/internal/config"
	"saturn/internal/gather"
	"saturn/internal/store"
	"saturn/internal/util"
)

func main() {
	cfgPath := "config/saturn.yaml"
	if p := os.Getenv("SATURN_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	barStore, closeStore, err := newBarStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeStore()

	baseURL := cfg.Gather.BaseURL
	if baseURL == "" {
		baseURL = gather.DefaultCoinbaseURL
	}
	client := gather.NewCoinbaseClient(baseURL, cfg.Gather.RateLimitPerMin)
	gatherer := gather.NewDailyBarGatherer(
		client,
		barStore,
		cfg.Gather.Products,
		cfg.Gather.StartDate,
		cfg.Gather.MaxWorkers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting saturn-gather", "products", len(cfg.Gather.Products), "store", cfg.Storage.Backend)
	if err := gatherer.Run(ctx); err != nil {
		log.Fatalf("gather error: %v", err)
	}
}

func newBarStore(cfg *config.Config) (store.BarStore, func() error, error) {
	if cfg.Storage.Backend == "sqlite" {
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return store.NewParquetStore(cfg.Storage.DataDir), func() error { return nil }, nil
}
