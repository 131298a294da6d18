package risk

import (
	"math"

	"saturn/internal/domain"
	"saturn/internal/portfolio"
)

// Engine applies the constraint parameters to portfolio state and signal
// votes, producing admissible trades.
type Engine struct {
	products      []string
	assets        []AssetParams
	params        PortfolioParams
	candleSeconds int64
}

// NewEngine creates an Engine. assets must be parallel to products;
// candleSeconds is the bar duration used for holding-period and cool-down
// arithmetic.
func NewEngine(products []string, assets []AssetParams, params PortfolioParams, candleSeconds int64) *Engine {
	return &Engine{products: products, assets: assets, params: params, candleSeconds: candleSeconds}
}

// SizeBuy returns the risk-based target quantity for a buy of the asset at
// the given price: (maxPositionSizePct * portfolioValue) / (riskPerTradePct
// * price), rounded to 1e-6 units.
func (e *Engine) SizeBuy(asset int, price, portfolioValue float64) float64 {
	a := e.assets[asset]
	if price <= 0 || a.RiskPerTradePct <= 0 {
		return 0
	}
	qty := (a.MaxPositionSizePct * portfolioValue) / (a.RiskPerTradePct * price)
	return portfolio.RoundQty(qty)
}

// PreOrderCheck inspects every open position against the previous bar's
// closes and emits risk-management sell-alls: a stop-loss when the close
// fell through the trailing stop, a take-profit when it cleared the
// take-profit level. Independently, when the total marked notional falls
// below maxDrawdownPct of peak equity the whole portfolio is flagged for
// liquidation: the returned trades are replaced by sell-alls for every open
// position and the second return value is true, directing the orchestrator
// to terminate the run after executing them.
func (e *Engine) PreOrderCheck(p *portfolio.Portfolio, closes []float64, ts int64) ([]*portfolio.Trade, bool) {
	var trades []*portfolio.Trade
	totalNotional := 0.0

	for i, pos := range p.Positions() {
		if pos == nil || !pos.Open() {
			continue
		}
		price := closes[i]
		totalNotional += pos.Quantity * price

		switch {
		case price < pos.TrailingStopPrice:
			trades = append(trades, portfolio.NewStopLoss(i, pos.Product, pos.Quantity, ts))
		case price > pos.TakeProfitPrice():
			trades = append(trades, portfolio.NewTakeProfit(i, pos.Product, pos.Quantity, ts))
		}
	}

	if totalNotional > 0 && totalNotional < e.params.MaxDrawdownPct*p.PeakEquity {
		trades = trades[:0]
		for i, pos := range p.Positions() {
			if pos != nil && pos.Open() {
				trades = append(trades, portfolio.NewLiquidation(i, pos.Product, pos.Quantity, ts))
			}
		}
		return trades, true
	}

	return trades, false
}

// GenerateTrades translates per-asset votes into candidate trades priced at
// the given closes. Buy votes are sized by risk and dropped when under the
// minimum notional; sell votes against an open position sell the configured
// fraction of it.
func (e *Engine) GenerateTrades(votes []domain.Vote, closes []float64, p *portfolio.Portfolio, ts int64) []*portfolio.Trade {
	value := p.Value()
	var trades []*portfolio.Trade

	for i, vote := range votes {
		price := closes[i]
		a := e.assets[i]

		switch vote {
		case domain.VoteBuy:
			qty := e.SizeBuy(i, price, value)
			if qty <= 0 {
				continue
			}
			if qty*price <= a.MinTradeSizePct*value {
				continue // dust order
			}
			trades = append(trades, portfolio.NewSignalBuy(i, e.products[i], qty, ts))

		case domain.VoteSell:
			pos := p.Position(i)
			if pos == nil || !pos.Open() {
				continue
			}
			qty := portfolio.RoundQty(pos.Quantity * a.SellFraction)
			if qty <= 0 {
				continue
			}
			trades = append(trades, portfolio.NewSignalSell(i, pos.Product, qty, ts))
		}
	}
	return trades
}

// EvaluateTrades applies the admission gates to candidate trades. Buys are
// rejected when the position was entered fewer than minHoldingCandles bars
// ago (a brand-new position passes), when the asset is cooling down after a
// losing exit, or when the notional is under the minimum trade size. Sells
// pass through unconditionally. Finally the whole surviving batch is
// discarded unless its aggregate notional exceeds rebalanceThresholdPct of
// portfolio value. Rejected trades are marked with their reason and returned
// separately for the execution counters.
func (e *Engine) EvaluateTrades(trades []*portfolio.Trade, closes []float64, p *portfolio.Portfolio, ts int64) (admitted, rejected []*portfolio.Trade) {
	value := p.Value()

	for _, t := range trades {
		if t.IsSell() {
			admitted = append(admitted, t)
			continue
		}

		a := e.assets[t.Asset]
		pos := p.Position(t.Asset)

		if pos != nil && pos.Open() && a.MinHoldingCandles > 0 {
			held := (ts - pos.LastEntryTimestamp) / e.candleSeconds
			if held < int64(a.MinHoldingCandles) {
				t.MarkRejected(portfolio.ReasonHoldingPeriod)
				rejected = append(rejected, t)
				continue
			}
		}

		if pos != nil && pos.LastExitWasLoss && a.CoolDownCandles > 0 {
			elapsed := (ts - pos.LastExitTimestamp) / e.candleSeconds
			if elapsed < int64(a.CoolDownCandles) {
				t.MarkRejected(portfolio.ReasonCoolDown)
				rejected = append(rejected, t)
				continue
			}
		}

		if t.Quantity*closes[t.Asset] <= a.MinTradeSizePct*value {
			t.MarkRejected(portfolio.ReasonTradeSize)
			rejected = append(rejected, t)
			continue
		}

		admitted = append(admitted, t)
	}

	// Rebalance gate: the batch trades only if it moves enough notional.
	total := 0.0
	for _, t := range admitted {
		total += math.Abs(t.Quantity) * closes[t.Asset]
	}
	if len(admitted) > 0 && total <= e.params.RebalanceThresholdPct*value {
		for _, t := range admitted {
			t.MarkRejected(portfolio.ReasonTradeSize)
		}
		rejected = append(rejected, admitted...)
		admitted = nil
	}

	return admitted, rejected
}
