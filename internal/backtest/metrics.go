package backtest

import (
	"math"

	"saturn/internal/domain"
)

const secondsPerYear = 365 * 24 * 3600

// Metrics are the summary performance numbers of one run. Return figures are
// fractions, not percentages.
type Metrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	TotalTrades      int     `json:"totalTrades"`
	WinRate          float64 `json:"winRate"`
	ProfitFactor     float64 `json:"profitFactor"`
}

func computeMetrics(res *Result, candleSeconds int64) Metrics {
	var m Metrics
	eq := res.EquityCurve
	if len(eq) < 2 || eq[0] <= 0 {
		return m
	}

	initial, final := eq[0], eq[len(eq)-1]
	m.TotalReturn = final/initial - 1

	periodsPerYear := float64(secondsPerYear) / float64(candleSeconds)
	intervals := float64(len(eq) - 1)
	if final > 0 {
		m.AnnualizedReturn = math.Pow(final/initial, periodsPerYear/intervals) - 1
	} else {
		m.AnnualizedReturn = -1
	}

	// Per-interval returns for the Sharpe ratio, annualized by sqrt(periods).
	returns := make([]float64, 0, len(eq)-1)
	for i := 1; i < len(eq); i++ {
		if eq[i-1] > 0 {
			returns = append(returns, eq[i]/eq[i-1]-1)
		}
	}
	if len(returns) > 1 {
		var sum float64
		for _, r := range returns {
			sum += r
		}
		mean := sum / float64(len(returns))
		var sq float64
		for _, r := range returns {
			d := r - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(len(returns)-1))
		if std > 0 {
			m.SharpeRatio = mean / std * math.Sqrt(periodsPerYear)
		}
	}

	peak := eq[0]
	for _, v := range eq {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > m.MaxDrawdown {
				m.MaxDrawdown = dd
			}
		}
	}

	var wins, losses int
	var grossWin, grossLoss float64
	for _, t := range res.Trades {
		if t.Status != domain.TradeExecuted || !t.IsSell() {
			continue
		}
		m.TotalTrades++
		if t.RealizedPnL > 0 {
			wins++
			grossWin += t.RealizedPnL
		} else if t.RealizedPnL < 0 {
			losses++
			grossLoss += -t.RealizedPnL
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(wins) / float64(m.TotalTrades)
	}
	if grossLoss > 0 {
		m.ProfitFactor = grossWin / grossLoss
	} else if grossWin > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	return m
}
