// Package domain defines the shared value types of the saturn simulation
// engine: price bars, strategy votes, trade kinds and statuses, and the
// capital-growth frequency calendar.
package domain

import "time"

// Bar is one OHLCV sample for one product at one time step. Bars are
// immutable once produced by the data layer; the engine only derives state
// from them.
type Bar struct {
	Product   string    `json:"product"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Vote is a single strategy's per-bar trading decision.
type Vote int

// Vote values. Anything else is invalid.
const (
	VoteSell Vote = -1
	VoteHold Vote = 0
	VoteBuy  Vote = 1
)

// TradeKind identifies why an order was generated.
type TradeKind string

// Trade kinds.
const (
	TradeSignalBuy   TradeKind = "signal_buy"
	TradeSignalSell  TradeKind = "signal_sell"
	TradeStopLoss    TradeKind = "stop_loss"
	TradeTakeProfit  TradeKind = "take_profit"
	TradeLiquidation TradeKind = "liquidation"
)

// TradeStatus is the lifecycle state of a trade. Pending is the only
// non-terminal state; terminal states are never re-entered.
type TradeStatus string

// Trade statuses.
const (
	TradePending  TradeStatus = "pending"
	TradeExecuted TradeStatus = "executed"
	TradeFailed   TradeStatus = "failed"
	TradeRejected TradeStatus = "rejected"
)

// Terminal reports whether the status is final.
func (s TradeStatus) Terminal() bool {
	return s == TradeExecuted || s == TradeFailed || s == TradeRejected
}
