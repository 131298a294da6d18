package portfolio

import "saturn/internal/domain"

// Failure and rejection reasons recorded on trades. These feed the per-kind
// execution counters in the backtest result.
const (
	ReasonInsufficientCash = "insufficient cash"
	ReasonShortSell        = "short sell prohibited"
	ReasonHoldingPeriod    = "holding period too short"
	ReasonCoolDown         = "cool down after loss"
	ReasonTradeSize        = "trade size too small"
)

// Trade is an immutable-intent, mutable-outcome record of one order. It is
// created Pending by the constraint engine or the pre-order risk check and
// resolved exactly once by the Portfolio; terminal states are never
// re-entered.
type Trade struct {
	Asset    int                `json:"asset"`
	Product  string             `json:"product"`
	Quantity float64            `json:"quantity"` // signed: positive buy, negative sell
	Kind     domain.TradeKind   `json:"kind"`
	Status   domain.TradeStatus `json:"status"`
	Reason   string             `json:"reason,omitempty"`

	CreatedAt int64 `json:"createdAt"` // Unix seconds

	// Execution fields, set when the trade resolves.
	Price     float64 `json:"price,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Cost      float64 `json:"cost,omitempty"` // commission charged

	// Sell-side references back to the entry.
	EntryPrice     float64 `json:"entryPrice,omitempty"`
	EntryTimestamp int64   `json:"entryTimestamp,omitempty"`
	HoldingPeriod  int64   `json:"holdingPeriod,omitempty"` // seconds held
	RealizedPnL    float64 `json:"realizedPnl,omitempty"`   // gross of cost
}

func newTrade(asset int, product string, qty float64, kind domain.TradeKind, createdAt int64) *Trade {
	return &Trade{
		Asset:     asset,
		Product:   product,
		Quantity:  qty,
		Kind:      kind,
		Status:    domain.TradePending,
		CreatedAt: createdAt,
	}
}

// NewSignalBuy creates a pending signal-driven buy for qty units.
func NewSignalBuy(asset int, product string, qty float64, createdAt int64) *Trade {
	return newTrade(asset, product, qty, domain.TradeSignalBuy, createdAt)
}

// NewSignalSell creates a pending signal-driven sell for qty units.
func NewSignalSell(asset int, product string, qty float64, createdAt int64) *Trade {
	return newTrade(asset, product, -qty, domain.TradeSignalSell, createdAt)
}

// NewStopLoss creates a pending stop-loss sell for qty units.
func NewStopLoss(asset int, product string, qty float64, createdAt int64) *Trade {
	return newTrade(asset, product, -qty, domain.TradeStopLoss, createdAt)
}

// NewTakeProfit creates a pending take-profit sell for qty units.
func NewTakeProfit(asset int, product string, qty float64, createdAt int64) *Trade {
	return newTrade(asset, product, -qty, domain.TradeTakeProfit, createdAt)
}

// NewLiquidation creates a pending drawdown-liquidation sell for qty units.
func NewLiquidation(asset int, product string, qty float64, createdAt int64) *Trade {
	return newTrade(asset, product, -qty, domain.TradeLiquidation, createdAt)
}

// IsBuy reports whether the trade adds to a position.
func (t *Trade) IsBuy() bool { return t.Quantity > 0 }

// IsSell reports whether the trade reduces a position.
func (t *Trade) IsSell() bool { return t.Quantity < 0 }

// markExecuted resolves the trade as executed at the given price.
func (t *Trade) markExecuted(price float64, ts int64, cost float64) {
	if t.Status.Terminal() {
		return
	}
	t.Status = domain.TradeExecuted
	t.Price = price
	t.Timestamp = ts
	t.Cost = cost
}

// MarkFailed resolves the trade as failed with the given reason. Failed
// covers data or ledger conditions discovered at execution time.
func (t *Trade) MarkFailed(reason string) {
	if t.Status.Terminal() {
		return
	}
	t.Status = domain.TradeFailed
	t.Reason = reason
}

// MarkRejected resolves the trade as rejected by a business rule before
// execution was attempted.
func (t *Trade) MarkRejected(reason string) {
	if t.Status.Terminal() {
		return
	}
	t.Status = domain.TradeRejected
	t.Reason = reason
}
