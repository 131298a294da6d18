// Package backtest implements the bar-by-bar simulation orchestrator. One
// Runner executes one run: it drives the signal generator, the risk engine,
// and the portfolio ledger through a time-major bar matrix and produces a
// Result with curves, trades, and summary metrics.
package backtest

import (
	"fmt"
	"log/slog"

	"saturn/internal/domain"
	"saturn/internal/portfolio"
	"saturn/internal/risk"
	"saturn/internal/signal"
)

// Config fully describes one run. AssetParams and Signals are parallel to
// Products.
type Config struct {
	Products        []string
	Signals         [][]signal.Signal
	AssetParams     []risk.AssetParams
	PortfolioParams risk.PortfolioParams

	InitialCash    float64
	CommissionRate float64
	Growth         portfolio.CapitalGrowth

	// WarmUp bars are fed to the signals but never traded on.
	WarmUp int

	// CandleSeconds is the bar duration, used for holding-period arithmetic
	// and for annualizing metrics.
	CandleSeconds int64
}

// Runner executes one backtest run.
type Runner struct {
	cfg Config
	log *slog.Logger
}

// NewRunner validates the configuration and builds a Runner. Violating the
// asset or per-asset signal limits is a setup error, surfaced here before any
// simulation state exists.
func NewRunner(cfg Config, log *slog.Logger) (*Runner, error) {
	if len(cfg.Products) == 0 {
		return nil, fmt.Errorf("no products configured")
	}
	if len(cfg.Signals) != len(cfg.Products) {
		return nil, fmt.Errorf("signals configured for %d assets, have %d products",
			len(cfg.Signals), len(cfg.Products))
	}
	if len(cfg.AssetParams) != len(cfg.Products) {
		return nil, fmt.Errorf("asset params configured for %d assets, have %d products",
			len(cfg.AssetParams), len(cfg.Products))
	}
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("initial cash must be positive, got %v", cfg.InitialCash)
	}
	if cfg.CandleSeconds <= 0 {
		return nil, fmt.Errorf("candle seconds must be positive, got %d", cfg.CandleSeconds)
	}
	if cfg.WarmUp < 1 {
		return nil, fmt.Errorf("warm-up must be at least 1 bar, got %d", cfg.WarmUp)
	}
	if _, err := signal.NewGenerator(cfg.Signals); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, log: log}, nil
}

// Run executes the simulation over the time-major bar matrix: bars[t][i] is
// the bar of product i at interval t, timestamps[t] its Unix-seconds time.
// Every row must cover every product; callers align products beforehand.
func (r *Runner) Run(bars [][]domain.Bar, timestamps []int64) (*Result, error) {
	n := len(bars)
	if n != len(timestamps) {
		return nil, fmt.Errorf("have %d bar rows but %d timestamps", n, len(timestamps))
	}
	if n <= r.cfg.WarmUp {
		return nil, fmt.Errorf("need more than %d bars to warm up, got %d", r.cfg.WarmUp, n)
	}
	assets := len(r.cfg.Products)
	for t, row := range bars {
		if len(row) != assets {
			return nil, fmt.Errorf("bar row %d covers %d products, want %d", t, len(row), assets)
		}
	}

	gen, err := signal.NewGenerator(r.cfg.Signals)
	if err != nil {
		return nil, err
	}
	engine := risk.NewEngine(r.cfg.Products, r.cfg.AssetParams, r.cfg.PortfolioParams, r.cfg.CandleSeconds)

	cfgs := make([]portfolio.PositionConfig, assets)
	for i, a := range r.cfg.AssetParams {
		cfgs[i] = portfolio.PositionConfig{
			TrailingStopPct:   a.TrailingStopPct,
			TrailingUpdatePct: a.TrailingUpdatePct,
			TakeProfitPct:     a.TakeProfitPct,
		}
	}
	pf := portfolio.New(r.cfg.Products, cfgs, r.cfg.InitialCash, r.cfg.PortfolioParams.MinCashPct,
		r.cfg.CommissionRate, r.cfg.Growth)

	r.log.Info("backtest starting",
		"products", assets, "bars", n, "warm_up", r.cfg.WarmUp, "initial_cash", r.cfg.InitialCash)

	res := &Result{ExitIndex: -1}

	// Warm-up: seed the signals without trading.
	for t := 0; t < r.cfg.WarmUp; t++ {
		r.feed(gen, bars[t])
	}

	prevCloses := make([]float64, assets)
	curOpens := make([]float64, assets)

	for t := r.cfg.WarmUp; t < n; t++ {
		ts := timestamps[t]
		for i := 0; i < assets; i++ {
			prevCloses[i] = bars[t-1][i].Close
			curOpens[i] = bars[t][i].Open
		}

		// Risk exits react to the previous close and fill at the current
		// open, ahead of any signal-driven order.
		pf.PreOrderUpdate(curOpens)
		riskTrades, liquidate := engine.PreOrderCheck(pf, prevCloses, ts)
		pf.ExecuteTrades(riskTrades, curOpens, ts)
		res.Trades = append(res.Trades, riskTrades...)

		if liquidate {
			r.log.Warn("drawdown liquidation, terminating run", "interval", t, "timestamp", ts)
			pf.PostOrderUpdate(curOpens)
			res.Timestamps = append(res.Timestamps, ts)
			res.EarlyExit = true
			res.ExitIndex = t
			res.ExitTimestamp = ts
			break
		}

		riskTraded := make(map[int]bool, len(riskTrades))
		for _, tr := range riskTrades {
			riskTraded[tr.Asset] = true
		}

		// Orders queued last interval fill at the previous close.
		pending := pf.TakePending()
		pf.ExecuteTrades(pending, prevCloses, ts)
		res.Trades = append(res.Trades, pending...)

		pf.ApplyCapitalGrowth(ts)

		// Decide on data through the previous bar; assets already touched by
		// a risk exit this interval sit out.
		votes := gen.Decisions()
		for i := range votes {
			if riskTraded[i] {
				votes[i] = domain.VoteHold
			}
		}
		candidates := engine.GenerateTrades(votes, prevCloses, pf, ts)
		admitted, rejected := engine.EvaluateTrades(candidates, prevCloses, pf, ts)
		pf.AddPending(admitted)
		res.Trades = append(res.Trades, rejected...)

		r.feed(gen, bars[t])

		pf.PostOrderUpdate(prevCloses)
		res.Timestamps = append(res.Timestamps, ts)
	}

	// Orders still queued when the data ran out never execute.
	res.Trades = append(res.Trades, pf.TakePending()...)

	res.EquityCurve = pf.EquityCurve
	res.CashCurve = pf.CashCurve
	res.NotionalCurve = pf.NotionalCurve
	res.CostCurve = pf.CostCurve
	res.RealizedCurve = pf.RealizedCurve
	res.UnrealizedCurve = pf.UnrealizedCurve
	res.Positions = pf.Positions()
	res.Counts = countTrades(res.Trades)
	res.Metrics = computeMetrics(res, r.cfg.CandleSeconds)

	r.log.Info("backtest finished",
		"intervals", len(res.Timestamps),
		"trades_executed", res.Counts.Executed,
		"final_equity", res.EquityCurve[len(res.EquityCurve)-1],
		"early_exit", res.EarlyExit)

	return res, nil
}

func (r *Runner) feed(gen *signal.Generator, row []domain.Bar) {
	for i, b := range row {
		gen.Update(i, b.Open, b.High, b.Low, b.Close)
	}
}
