package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"saturn/internal/backtest"
	"saturn/internal/config"
	"saturn/internal/domain"
	"saturn/internal/portfolio"
	"saturn/internal/report"
	"saturn/internal/risk"
	"saturn/internal/signal"
	"saturn/internal/store"
	"saturn/internal/util"
)

func main() {
	reportDir := flag.String("report", "", "write CSV report files into this directory (overrides config)")
	flag.Parse()

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

	res, err := run(cfg, logger)
	if err != nil {
		log.Fatalf("backtest error: %v", err)
	}

	dir := cfg.Backtest.ReportDir
	if *reportDir != "" {
		dir = *reportDir
	}
	if dir != "" {
		if err := report.WriteCSVDir(dir, res); err != nil {
			log.Fatalf("writing report: %v", err)
		}
		slog.Info("report written", "dir", dir)
	}

	printSummary(res)
}

func run(cfg *config.Config, logger *slog.Logger) (*backtest.Result, error) {
	bt := cfg.Backtest

	barStore, closeStore, err := newBarStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	start, err := time.Parse("2006-01-02", bt.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start date %q: %w", bt.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", bt.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parsing end date %q: %w", bt.EndDate, err)
	}

	bars, timestamps, err := store.LoadMatrix(context.Background(), barStore, bt.Products, start, end)
	if err != nil {
		return nil, err
	}

	sigs, err := signal.NewMatrix(bt.Strategies, len(bt.Products), signal.DefaultParams())
	if err != nil {
		return nil, err
	}

	perAsset := make([]risk.AssetParams, len(bt.Products))
	for i := range perAsset {
		perAsset[i] = bt.AssetParams
	}

	var growth portfolio.CapitalGrowth
	if bt.GrowthAmount > 0 || bt.GrowthPct > 0 {
		freq := domain.Frequency(bt.GrowthFrequency)
		if !freq.Valid() {
			return nil, fmt.Errorf("invalid growth frequency %q", bt.GrowthFrequency)
		}
		growth = portfolio.CapitalGrowth{Amount: bt.GrowthAmount, Pct: bt.GrowthPct, Frequency: freq}
	}

	runner, err := backtest.NewRunner(backtest.Config{
		Products:        bt.Products,
		Signals:         sigs,
		AssetParams:     perAsset,
		PortfolioParams: bt.PortfolioParams,
		InitialCash:     bt.InitialCash,
		CommissionRate:  bt.CommissionRate,
		Growth:          growth,
		WarmUp:          bt.WarmUp,
		CandleSeconds:   86400,
	}, logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(bars, timestamps)
}

func printSummary(res *backtest.Result) {
	m := res.Metrics
	fmt.Printf("intervals:        %d\n", len(res.Timestamps))
	fmt.Printf("final equity:     %.2f\n", res.EquityCurve[len(res.EquityCurve)-1])
	fmt.Printf("total return:     %.2f%%\n", m.TotalReturn*100)
	fmt.Printf("annualized:       %.2f%%\n", m.AnnualizedReturn*100)
	fmt.Printf("sharpe ratio:     %.2f\n", m.SharpeRatio)
	fmt.Printf("max drawdown:     %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("closed trades:    %d\n", m.TotalTrades)
	fmt.Printf("win rate:         %.2f%%\n", m.WinRate*100)
	fmt.Printf("profit factor:    %.2f\n", m.ProfitFactor)
	fmt.Printf("executed/failed/rejected: %d/%d/%d\n",
		res.Counts.Executed, res.Counts.Failed, res.Counts.Rejected)
	if res.EarlyExit {
		fmt.Printf("terminated early by drawdown liquidation at interval %d\n", res.ExitIndex)
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
