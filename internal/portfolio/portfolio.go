// Package portfolio implements the simulation ledger: per-asset positions,
// cash, trade execution, mark-to-market curves, and scheduled capital
// injections. The Portfolio exclusively owns its positions and curves;
// callers read state between bars but never mutate it directly.
package portfolio

import (
	"math"

	"saturn/internal/domain"
)

// DefaultCommissionRate is the per-side commission charged on notional.
const DefaultCommissionRate = 0.001

// qtyScale rounds order quantities to 1e-6 units.
const qtyScale = 1e6

// RoundQty rounds a quantity to 1e-6 units, toward zero.
func RoundQty(qty float64) float64 {
	return math.Floor(qty*qtyScale) / qtyScale
}

// CapitalGrowth schedules periodic cash injections. Amount takes precedence
// when positive; otherwise Pct of current equity is injected. A boundary of
// the Frequency calendar must be crossed between bars for an injection to
// fire.
type CapitalGrowth struct {
	Amount    float64
	Pct       float64
	Frequency domain.Frequency
}

// Portfolio is the ledger for one simulation run.
type Portfolio struct {
	products []string
	cfgs     []PositionConfig

	Cash           float64
	MinCashPct     float64
	CommissionRate float64

	positions []*Position // indexed by asset, nil until first buy

	EquityCurve     []float64
	CashCurve       []float64
	NotionalCurve   []float64
	CostCurve       []float64
	RealizedCurve   []float64
	UnrealizedCurve []float64

	PeakEquity   float64
	PeakNotional float64

	growth     CapitalGrowth
	lastPeriod int64
	hasPeriod  bool

	pending []*Trade
}

// New creates a Portfolio for the given products seeded with initial cash.
// cfgs supplies the per-asset exit parameters for positions as they open and
// must be parallel to products.
func New(products []string, cfgs []PositionConfig, initialCash, minCashPct, commissionRate float64, growth CapitalGrowth) *Portfolio {
	p := &Portfolio{
		products:       products,
		cfgs:           cfgs,
		Cash:           initialCash,
		MinCashPct:     minCashPct,
		CommissionRate: commissionRate,
		positions:      make([]*Position, len(products)),
		growth:         growth,
		PeakEquity:     initialCash,
	}

	// Seed the curves with the pre-trading state.
	p.EquityCurve = append(p.EquityCurve, initialCash)
	p.CashCurve = append(p.CashCurve, initialCash)
	p.NotionalCurve = append(p.NotionalCurve, 0)
	p.CostCurve = append(p.CostCurve, 0)
	p.RealizedCurve = append(p.RealizedCurve, 0)
	p.UnrealizedCurve = append(p.UnrealizedCurve, 0)

	return p
}

// Position returns the asset's position record, or nil if it never opened.
func (p *Portfolio) Position(asset int) *Position {
	if asset < 0 || asset >= len(p.positions) {
		return nil
	}
	return p.positions[asset]
}

// Positions returns the full position array, indexed by asset. Entries are
// nil for assets that never traded.
func (p *Portfolio) Positions() []*Position { return p.positions }

// TotalNotional sums the marked notional across positions.
func (p *Portfolio) TotalNotional() float64 {
	total := 0.0
	for _, pos := range p.positions {
		if pos != nil {
			total += pos.Notional
		}
	}
	return total
}

// Value returns cash plus total marked notional.
func (p *Portfolio) Value() float64 { return p.Cash + p.TotalNotional() }

// AddPending queues trades for execution at the next interval, modeling the
// one-bar execution lag.
func (p *Portfolio) AddPending(trades []*Trade) {
	p.pending = append(p.pending, trades...)
}

// TakePending returns and clears the queued trades.
func (p *Portfolio) TakePending() []*Trade {
	out := p.pending
	p.pending = nil
	return out
}

// ExecuteTrades applies the given trades at the supplied per-asset prices.
// Failures are trade-local: each failed trade is marked and skipped, never
// aborting the batch.
func (p *Portfolio) ExecuteTrades(trades []*Trade, prices []float64, ts int64) {
	for _, t := range trades {
		if t.Status != domain.TradePending {
			continue
		}
		price := prices[t.Asset]
		if t.IsBuy() {
			p.executeBuy(t, price, ts)
		} else {
			p.executeSell(t, price, ts)
		}
	}
}

func (p *Portfolio) executeBuy(t *Trade, price float64, ts int64) {
	qty := t.Quantity

	// Clamp to what the cash reserve allows, keeping MinCashPct aside.
	available := p.Cash * (1 - p.MinCashPct)
	maxQty := RoundQty(available / (price * (1 + p.CommissionRate)))
	if qty > maxQty {
		qty = maxQty
	}
	if qty <= 0 || qty*price*(1+p.CommissionRate) > available+1e-9 {
		t.MarkFailed(ReasonInsufficientCash)
		return
	}

	pos := p.positions[t.Asset]
	if pos == nil {
		pos = NewPosition(t.Asset, t.Product, p.cfgs[t.Asset])
		p.positions[t.Asset] = pos
	}

	cost := qty * price * p.CommissionRate
	pos.ApplyBuy(price, qty, cost, ts)
	p.Cash -= qty*price + cost

	t.Quantity = qty
	t.markExecuted(price, ts, cost)
}

func (p *Portfolio) executeSell(t *Trade, price float64, ts int64) {
	pos := p.positions[t.Asset]
	if pos == nil || !pos.Open() {
		t.MarkFailed(ReasonShortSell)
		return
	}

	qty := -t.Quantity
	if qty > pos.Quantity {
		qty = pos.Quantity
	}

	entryPrice := pos.AvgEntryPrice
	entryTs := pos.EntryTimestamp

	proceeds := qty * price
	cost := proceeds * p.CommissionRate
	pnl := pos.ApplySell(price, qty, cost, ts, t.Kind)
	p.Cash += proceeds - cost

	t.Quantity = -qty
	t.EntryPrice = entryPrice
	t.EntryTimestamp = entryTs
	t.HoldingPeriod = ts - entryTs
	t.RealizedPnL = pnl
	t.markExecuted(price, ts, cost)
}

// PreOrderUpdate ratchets trailing stops on all open positions with the
// newest known per-asset prices.
func (p *Portfolio) PreOrderUpdate(prices []float64) {
	for i, pos := range p.positions {
		if pos != nil && pos.Open() {
			pos.PreOrderUpdate(prices[i])
		}
	}
}

// ApplyCapitalGrowth injects scheduled capital when a frequency boundary has
// been crossed since the last observed bar. It returns the injected amount,
// zero when no boundary was crossed or no growth is configured.
func (p *Portfolio) ApplyCapitalGrowth(ts int64) float64 {
	if p.growth.Amount <= 0 && p.growth.Pct <= 0 {
		return 0
	}
	period := p.growth.Frequency.PeriodIndex(ts)
	if !p.hasPeriod {
		p.hasPeriod = true
		p.lastPeriod = period
		return 0
	}
	if period == p.lastPeriod {
		return 0
	}
	p.lastPeriod = period

	amount := p.growth.Amount
	if amount <= 0 {
		amount = p.Value() * p.growth.Pct
	}
	p.Cash += amount
	return amount
}

// PostOrderUpdate marks every open position at the given per-asset prices,
// appends one value to each curve, and advances the high-water marks. Curve
// lengths stay equal to each other and to the count of processed intervals
// plus the initial seed.
func (p *Portfolio) PostOrderUpdate(prices []float64) {
	var notional, cost, realized, unrealized float64
	for i, pos := range p.positions {
		if pos == nil {
			continue
		}
		pos.MarkToMarket(prices[i])
		notional += pos.Notional
		cost += pos.CumBuyCost + pos.CumSellCost
		realized += pos.RealizedPnLGross
		unrealized += pos.UnrealizedPnL
	}

	equity := p.Cash + notional

	p.EquityCurve = append(p.EquityCurve, equity)
	p.CashCurve = append(p.CashCurve, p.Cash)
	p.NotionalCurve = append(p.NotionalCurve, notional)
	p.CostCurve = append(p.CostCurve, cost)
	p.RealizedCurve = append(p.RealizedCurve, realized)
	p.UnrealizedCurve = append(p.UnrealizedCurve, unrealized)

	if equity > p.PeakEquity {
		p.PeakEquity = equity
	}
	if notional > p.PeakNotional {
		p.PeakNotional = notional
	}
}
