// Package risk implements the constraint engine: position sizing, pre-order
// risk checks (trailing stop, take profit, drawdown liquidation), the
// translation of votes into trades, and the admission gates applied to
// candidate trades. The engine holds no mutable state across calls except
// its configuration; it reads, never mutates, the portfolio.
package risk

// AssetParams are the per-asset constraint parameters, immutable for the
// duration of a run.
type AssetParams struct {
	MaxPositionSizePct float64 `yaml:"max_position_size_pct" json:"maxPositionSizePct"`
	MinTradeSizePct    float64 `yaml:"min_trade_size_pct" json:"minTradeSizePct"`
	MinHoldingCandles  int     `yaml:"min_holding_candles" json:"minHoldingCandles"`
	TrailingStopPct    float64 `yaml:"trailing_stop_pct" json:"trailingStopPct"`
	TrailingUpdatePct  float64 `yaml:"trailing_update_pct" json:"trailingUpdatePct"`
	TakeProfitPct      float64 `yaml:"take_profit_pct" json:"takeProfitPct"`
	RiskPerTradePct    float64 `yaml:"risk_per_trade_pct" json:"riskPerTradePct"`
	SellFraction       float64 `yaml:"sell_fraction" json:"sellFraction"`
	CoolDownCandles    int     `yaml:"cool_down_candles" json:"coolDownCandles"`
}

// DefaultAssetParams returns the conventional per-asset constraints.
func DefaultAssetParams() AssetParams {
	return AssetParams{
		MaxPositionSizePct: 1.0,
		MinTradeSizePct:    0.05,
		MinHoldingCandles:  15,
		TrailingStopPct:    0.05,
		TrailingUpdatePct:  0.02,
		TakeProfitPct:      0.2,
		RiskPerTradePct:    0.05,
		SellFraction:       0.5,
		CoolDownCandles:    0,
	}
}

// PortfolioParams are the portfolio-level constraint parameters.
type PortfolioParams struct {
	RebalanceThresholdPct float64 `yaml:"rebalance_threshold_pct" json:"rebalanceThresholdPct"`
	MinCashPct            float64 `yaml:"min_cash_pct" json:"minCashPct"`
	MaxDrawdownPct        float64 `yaml:"max_drawdown_pct" json:"maxDrawdownPct"`
}

// DefaultPortfolioParams returns the conventional portfolio constraints.
func DefaultPortfolioParams() PortfolioParams {
	return PortfolioParams{
		RebalanceThresholdPct: 0.05,
		MinCashPct:            0.1,
		MaxDrawdownPct:        0.2,
	}
}
