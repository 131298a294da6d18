package portfolio

import "saturn/internal/domain"

// positionEpsilon is the quantity below which a position counts as flat.
const positionEpsilon = 1e-6

// PositionConfig carries the per-asset exit parameters a Position needs when
// it is opened.
type PositionConfig struct {
	TrailingStopPct   float64 // distance of the stop below price
	TrailingUpdatePct float64 // price gain over the peak required to move the stop
	TakeProfitPct     float64 // gain over average entry triggering a take-profit
}

// Position is the per-asset ledger record. It is created on the asset's
// first executed buy and retained after being fully closed; quantity may
// return to zero and the record be reopened by a later buy.
type Position struct {
	Asset   int    `json:"asset"`
	Product string `json:"product"`

	Quantity      float64 `json:"quantity"` // always >= 0, never net short
	AvgEntryPrice float64 `json:"avgEntryPrice"`

	CumBuyProceeds  float64 `json:"cumBuyProceeds"`
	CumBuyCost      float64 `json:"cumBuyCost"`
	CumSellProceeds float64 `json:"cumSellProceeds"`
	CumSellCost     float64 `json:"cumSellCost"`

	EntryTimestamp     int64   `json:"entryTimestamp"`
	LastEntryTimestamp int64   `json:"lastEntryTimestamp"`
	LastEntryPrice     float64 `json:"lastEntryPrice"`
	LastExitTimestamp  int64   `json:"lastExitTimestamp"`
	LastExitWasLoss    bool    `json:"lastExitWasLoss"`

	PeakPrice         float64 `json:"peakPrice"`
	TrailingStopPrice float64 `json:"trailingStopPrice"`

	RealizedPnLGross float64 `json:"realizedPnlGross"`
	RealizedPnLNet   float64 `json:"realizedPnlNet"`
	UnrealizedPnL    float64 `json:"unrealizedPnl"`
	Notional         float64 `json:"notional"`

	TotalBought float64 `json:"totalBought"`
	TotalSold   float64 `json:"totalSold"`

	// Realized P&L bucketed by the kind of the exiting trade.
	PnLByKind map[domain.TradeKind]float64 `json:"pnlByKind"`

	cfg PositionConfig
}

// NewPosition creates an empty position record for the asset.
func NewPosition(asset int, product string, cfg PositionConfig) *Position {
	return &Position{
		Asset:     asset,
		Product:   product,
		PnLByKind: make(map[domain.TradeKind]float64),
		cfg:       cfg,
	}
}

// Open reports whether the position currently holds units.
func (p *Position) Open() bool { return p.Quantity > positionEpsilon }

// TakeProfitPrice returns the price above which a take-profit exit triggers.
// Zero while the position is flat.
func (p *Position) TakeProfitPrice() float64 {
	if !p.Open() {
		return 0
	}
	return p.AvgEntryPrice * (1 + p.cfg.TakeProfitPct)
}

// ApplyBuy applies an executed buy of qty units at price, with the given
// commission. The average entry price is recomputed as the quantity-weighted
// average of the prior and incoming cost basis.
func (p *Position) ApplyBuy(price, qty, cost float64, ts int64) {
	wasFlat := !p.Open()

	newQty := p.Quantity + qty
	p.AvgEntryPrice = (p.AvgEntryPrice*p.Quantity + price*qty) / newQty
	p.Quantity = newQty

	p.CumBuyProceeds += price * qty
	p.CumBuyCost += cost
	p.TotalBought += qty

	p.LastEntryPrice = price
	p.LastEntryTimestamp = ts
	if wasFlat {
		p.EntryTimestamp = ts
		p.PeakPrice = price
		p.TrailingStopPrice = price * (1 - p.cfg.TrailingStopPct)
		p.AvgEntryPrice = price
	}
}

// ApplySell applies an executed sell of qty units at price, with the given
// commission, and returns the gross realized P&L of the exit. The average
// entry price is not recomputed; it keeps reflecting the remaining lot's
// cost basis.
func (p *Position) ApplySell(price, qty, cost float64, ts int64, kind domain.TradeKind) float64 {
	pnl := (price - p.AvgEntryPrice) * qty

	p.CumSellProceeds += price * qty
	p.CumSellCost += cost
	p.TotalSold += qty

	p.RealizedPnLGross += pnl
	p.RealizedPnLNet += pnl - cost
	p.PnLByKind[kind] += pnl - cost

	p.Quantity -= qty
	if p.Quantity < positionEpsilon {
		p.Quantity = 0
		p.UnrealizedPnL = 0
		p.Notional = 0
	}

	p.LastExitTimestamp = ts
	p.LastExitWasLoss = pnl-cost < 0
	return pnl
}

// PreOrderUpdate ratchets the trailing stop with the newest known price. The
// stop only ever moves up: the candidate price*(1-trailingStopPct) replaces
// the current stop only when it is higher, and only once the price has
// cleared the previous peak by the configured update threshold.
func (p *Position) PreOrderUpdate(price float64) {
	if !p.Open() {
		return
	}
	if price <= p.PeakPrice {
		return
	}
	if price > p.PeakPrice*(1+p.cfg.TrailingUpdatePct) {
		if candidate := price * (1 - p.cfg.TrailingStopPct); candidate > p.TrailingStopPrice {
			p.TrailingStopPrice = candidate
		}
	}
	p.PeakPrice = price
}

// MarkToMarket recomputes notional and unrealized P&L at the given price.
// Unrealized P&L is always recomputed from the average entry price, never
// accumulated across bars.
func (p *Position) MarkToMarket(price float64) {
	if !p.Open() {
		p.Notional = 0
		p.UnrealizedPnL = 0
		return
	}
	p.Notional = p.Quantity * price
	p.UnrealizedPnL = (price - p.AvgEntryPrice) * p.Quantity
}
