package backtest

import (
	"saturn/internal/domain"
	"saturn/internal/portfolio"
)

// Result is the complete outcome of one run. The curves carry one leading
// seed value for the pre-trading state, so each curve is one longer than
// Timestamps.
type Result struct {
	Timestamps []int64 `json:"timestamps"`

	EquityCurve     []float64 `json:"equityCurve"`
	CashCurve       []float64 `json:"cashCurve"`
	NotionalCurve   []float64 `json:"notionalCurve"`
	CostCurve       []float64 `json:"costCurve"`
	RealizedCurve   []float64 `json:"realizedCurve"`
	UnrealizedCurve []float64 `json:"unrealizedCurve"`

	Trades    []*portfolio.Trade    `json:"trades"`
	Positions []*portfolio.Position `json:"positions"`

	// EarlyExit is set when a drawdown liquidation terminated the run before
	// the data did. ExitIndex is -1 when the run completed normally.
	EarlyExit     bool  `json:"earlyExit"`
	ExitIndex     int   `json:"exitIndex"`
	ExitTimestamp int64 `json:"exitTimestamp,omitempty"`

	Counts  TradeCounts `json:"counts"`
	Metrics Metrics     `json:"metrics"`
}

// TradeCounts tallies trades by outcome, kind, and failure reason.
type TradeCounts struct {
	Executed int `json:"executed"`
	Failed   int `json:"failed"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`

	ByKind   map[domain.TradeKind]int `json:"byKind"`
	ByReason map[string]int           `json:"byReason"`
}

func countTrades(trades []*portfolio.Trade) TradeCounts {
	c := TradeCounts{
		ByKind:   make(map[domain.TradeKind]int),
		ByReason: make(map[string]int),
	}
	for _, t := range trades {
		switch t.Status {
		case domain.TradeExecuted:
			c.Executed++
			c.ByKind[t.Kind]++
		case domain.TradeFailed:
			c.Failed++
			c.ByReason[t.Reason]++
		case domain.TradeRejected:
			c.Rejected++
			c.ByReason[t.Reason]++
		default:
			c.Pending++
		}
	}
	return c
}
