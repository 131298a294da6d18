package portfolio

import (
	"math"
	"testing"
	"time"

	"saturn/internal/domain"
)

func dayTS(day int) int64 {
	return time.Date(2024, 1, 1+day, 0, 0, 0, 0, time.UTC).Unix()
}

func newTestPortfolio(initial float64) *Portfolio {
	products := []string{"BTC-USD", "ETH-USD"}
	cfgs := []PositionConfig{
		{TrailingStopPct: 0.05, TakeProfitPct: 0.2},
		{TrailingStopPct: 0.05, TakeProfitPct: 0.2},
	}
	return New(products, cfgs, initial, 0, 0, CapitalGrowth{})
}

func checkCurvePoint(t *testing.T, p *Portfolio, idx int, equity, cash, notional, realized, unrealized float64) {
	t.Helper()
	const tol = 1e-6
	if got := p.EquityCurve[idx]; math.Abs(got-equity) > tol {
		t.Errorf("equity[%d] = %v, want %v", idx, got, equity)
	}
	if got := p.CashCurve[idx]; math.Abs(got-cash) > tol {
		t.Errorf("cash[%d] = %v, want %v", idx, got, cash)
	}
	if got := p.NotionalCurve[idx]; math.Abs(got-notional) > tol {
		t.Errorf("notional[%d] = %v, want %v", idx, got, notional)
	}
	if got := p.RealizedCurve[idx]; math.Abs(got-realized) > tol {
		t.Errorf("realized[%d] = %v, want %v", idx, got, realized)
	}
	if got := p.UnrealizedCurve[idx]; math.Abs(got-unrealized) > tol {
		t.Errorf("unrealized[%d] = %v, want %v", idx, got, unrealized)
	}
}

func TestLedgerEndToEnd(t *testing.T) {
	p := newTestPortfolio(200_000)

	// Day 0: buy 1 BTC @ 50,000 and 2 ETH @ 4,000.
	day0 := []*Trade{
		NewSignalBuy(0, "BTC-USD", 1, dayTS(0)),
		NewSignalBuy(1, "ETH-USD", 2, dayTS(0)),
	}
	p.ExecuteTrades(day0, []float64{50_000, 4_000}, dayTS(0))
	p.PostOrderUpdate([]float64{50_000, 4_000})

	for _, tr := range day0 {
		if tr.Status != domain.TradeExecuted {
			t.Fatalf("day 0 trade %s not executed: %s %s", tr.Product, tr.Status, tr.Reason)
		}
	}
	checkCurvePoint(t, p, 1, 200_000, 142_000, 58_000, 0, 0)

	// Day 1: sell 0.5 BTC @ 51,000 and 1 ETH @ 4,200.
	day1 := []*Trade{
		NewSignalSell(0, "BTC-USD", 0.5, dayTS(1)),
		NewSignalSell(1, "ETH-USD", 1, dayTS(1)),
	}
	p.ExecuteTrades(day1, []float64{51_000, 4_200}, dayTS(1))
	p.PostOrderUpdate([]float64{51_000, 4_200})

	checkCurvePoint(t, p, 2, 201_400, 171_700, 29_700, 700, 700)

	if got := day1[0].RealizedPnL; math.Abs(got-500) > 1e-9 {
		t.Errorf("BTC sell realized P&L = %v, want 500", got)
	}
	if got := day1[1].RealizedPnL; math.Abs(got-200) > 1e-9 {
		t.Errorf("ETH sell realized P&L = %v, want 200", got)
	}

	// Day 2: no trades, mark at 49,500 / 4,100.
	p.PostOrderUpdate([]float64{49_500, 4_100})
	checkCurvePoint(t, p, 3, 200_550, 171_700, 28_850, 700, -150)

	// Average entry prices must not have moved on the sells.
	if got := p.Position(0).AvgEntryPrice; got != 50_000 {
		t.Errorf("BTC avg entry after sell = %v, want 50000", got)
	}
	if got := p.Position(1).AvgEntryPrice; got != 4_000 {
		t.Errorf("ETH avg entry after sell = %v, want 4000", got)
	}
}

func TestAccountingInvariant(t *testing.T) {
	p := newTestPortfolio(100_000)

	prices := [][]float64{
		{100, 10}, {105, 11}, {95, 9}, {110, 12}, {90, 8},
	}
	p.ExecuteTrades([]*Trade{
		NewSignalBuy(0, "BTC-USD", 100, dayTS(0)),
		NewSignalBuy(1, "ETH-USD", 500, dayTS(0)),
	}, prices[0], dayTS(0))

	for i, px := range prices {
		if i == 2 {
			p.ExecuteTrades([]*Trade{NewSignalSell(0, "BTC-USD", 40, dayTS(i))}, px, dayTS(i))
		}
		p.PostOrderUpdate(px)
	}

	n := len(p.EquityCurve)
	if n != len(p.CashCurve) || n != len(p.NotionalCurve) || n != len(p.CostCurve) ||
		n != len(p.RealizedCurve) || n != len(p.UnrealizedCurve) {
		t.Fatal("curve lengths diverged")
	}
	for i := 0; i < n; i++ {
		if diff := p.EquityCurve[i] - p.CashCurve[i] - p.NotionalCurve[i]; math.Abs(diff) > 1e-6 {
			t.Errorf("equity leak at %d: %v", i, diff)
		}
	}
}

func TestQuantityNeverNegative(t *testing.T) {
	p := newTestPortfolio(100_000)
	p.ExecuteTrades([]*Trade{NewSignalBuy(0, "BTC-USD", 2, dayTS(0))}, []float64{100, 0}, dayTS(0))

	// Sell far more than held: the fill clamps to the held quantity.
	sell := NewSignalSell(0, "BTC-USD", 10, dayTS(1))
	p.ExecuteTrades([]*Trade{sell}, []float64{110, 0}, dayTS(1))

	if sell.Status != domain.TradeExecuted {
		t.Fatalf("clamped sell not executed: %s %s", sell.Status, sell.Reason)
	}
	if got := sell.Quantity; got != -2 {
		t.Errorf("executed sell quantity = %v, want -2", got)
	}
	if got := p.Position(0).Quantity; got < 0 {
		t.Errorf("position quantity = %v, want >= 0", got)
	}
}

func TestShortSellFails(t *testing.T) {
	p := newTestPortfolio(100_000)
	sell := NewSignalSell(0, "BTC-USD", 1, dayTS(0))
	p.ExecuteTrades([]*Trade{sell}, []float64{100, 0}, dayTS(0))

	if sell.Status != domain.TradeFailed || sell.Reason != ReasonShortSell {
		t.Errorf("short sell = %s/%q, want failed/%q", sell.Status, sell.Reason, ReasonShortSell)
	}
}

func TestInsufficientCashFails(t *testing.T) {
	products := []string{"BTC-USD"}
	p := New(products, []PositionConfig{{}}, 1_000, 0.5, 0, CapitalGrowth{})

	// Only 500 of cash is deployable; a 1,000 notional buy clamps down.
	buy := NewSignalBuy(0, "BTC-USD", 10, dayTS(0))
	p.ExecuteTrades([]*Trade{buy}, []float64{100}, dayTS(0))
	if buy.Status != domain.TradeExecuted {
		t.Fatalf("clamped buy not executed: %s %s", buy.Status, buy.Reason)
	}
	if got := buy.Quantity; math.Abs(got-5) > 1e-9 {
		t.Errorf("clamped buy quantity = %v, want 5", got)
	}

	// With no deployable cash left, the next buy fails outright.
	p.Cash = 0
	buy2 := NewSignalBuy(0, "BTC-USD", 1, dayTS(1))
	p.ExecuteTrades([]*Trade{buy2}, []float64{100}, dayTS(1))
	if buy2.Status != domain.TradeFailed || buy2.Reason != ReasonInsufficientCash {
		t.Errorf("cashless buy = %s/%q, want failed/%q", buy2.Status, buy2.Reason, ReasonInsufficientCash)
	}
}

func TestCommissionCharged(t *testing.T) {
	p := New([]string{"BTC-USD"}, []PositionConfig{{}}, 100_000, 0, DefaultCommissionRate, CapitalGrowth{})

	buy := NewSignalBuy(0, "BTC-USD", 100, dayTS(0))
	p.ExecuteTrades([]*Trade{buy}, []float64{100}, dayTS(0))

	wantCost := 100.0 * 100 * DefaultCommissionRate
	if math.Abs(buy.Cost-wantCost) > 1e-9 {
		t.Errorf("buy cost = %v, want %v", buy.Cost, wantCost)
	}
	if math.Abs(p.Cash-(100_000-10_000-wantCost)) > 1e-9 {
		t.Errorf("cash after buy = %v, want %v", p.Cash, 100_000-10_000-wantCost)
	}

	sell := NewSignalSell(0, "BTC-USD", 100, dayTS(1))
	p.ExecuteTrades([]*Trade{sell}, []float64{110}, dayTS(1))
	if sell.RealizedPnL != 1_000 {
		t.Errorf("gross realized P&L = %v, want 1000", sell.RealizedPnL)
	}
	net := p.Position(0).RealizedPnLNet
	if math.Abs(net-(1_000-11)) > 1e-9 { // sell commission: 11000 * 0.001
		t.Errorf("net realized P&L = %v, want 989", net)
	}
}

func TestTrailingStopMonotoneOnRisingPrices(t *testing.T) {
	pos := NewPosition(0, "BTC-USD", PositionConfig{TrailingStopPct: 0.05})
	pos.ApplyBuy(100, 1, 0, dayTS(0))

	last := pos.TrailingStopPrice
	if math.Abs(last-95) > 1e-9 {
		t.Fatalf("initial stop = %v, want 95", last)
	}
	for price := 101.0; price <= 150; price++ {
		pos.PreOrderUpdate(price)
		if pos.TrailingStopPrice < last {
			t.Fatalf("trailing stop moved down: %v -> %v at price %v", last, pos.TrailingStopPrice, price)
		}
		last = pos.TrailingStopPrice
	}
	if math.Abs(last-150*0.95) > 1e-9 {
		t.Errorf("final stop = %v, want %v", last, 150*0.95)
	}
}

func TestTrailingStopHoldsOnDecline(t *testing.T) {
	pos := NewPosition(0, "BTC-USD", PositionConfig{TrailingStopPct: 0.05})
	pos.ApplyBuy(100, 1, 0, dayTS(0))
	pos.PreOrderUpdate(120)
	stop := pos.TrailingStopPrice
	pos.PreOrderUpdate(90)
	if pos.TrailingStopPrice != stop {
		t.Errorf("stop moved on decline: %v -> %v", stop, pos.TrailingStopPrice)
	}
}

func TestTrailingStopUpdateThreshold(t *testing.T) {
	pos := NewPosition(0, "BTC-USD", PositionConfig{TrailingStopPct: 0.05, TrailingUpdatePct: 0.10})
	pos.ApplyBuy(100, 1, 0, dayTS(0))

	pos.PreOrderUpdate(105) // below the 10% update threshold
	if math.Abs(pos.TrailingStopPrice-95) > 1e-9 {
		t.Errorf("stop moved below update threshold: %v", pos.TrailingStopPrice)
	}
	pos.PreOrderUpdate(120) // 120 > 105 * 1.10
	if math.Abs(pos.TrailingStopPrice-114) > 1e-9 {
		t.Errorf("stop after threshold clear = %v, want 114", pos.TrailingStopPrice)
	}
}

func TestCapitalGrowthMonthlyBoundary(t *testing.T) {
	growth := CapitalGrowth{Amount: 10_000, Frequency: domain.FreqMonthly}
	p := New([]string{"BTC-USD"}, []PositionConfig{{}}, 100_000, 0, 0, growth)

	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Unix()
	jan20 := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC).Unix()
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Unix()

	if got := p.ApplyCapitalGrowth(jan15); got != 0 {
		t.Errorf("first observation injected %v, want 0", got)
	}
	if got := p.ApplyCapitalGrowth(jan20); got != 0 {
		t.Errorf("same-month injection %v, want 0", got)
	}
	if got := p.ApplyCapitalGrowth(feb1); got != 10_000 {
		t.Errorf("boundary injection %v, want 10000", got)
	}
	if p.Cash != 110_000 {
		t.Errorf("cash after injection = %v, want 110000", p.Cash)
	}
}

func TestCapitalGrowthPctOfEquity(t *testing.T) {
	growth := CapitalGrowth{Pct: 0.05, Frequency: domain.FreqDaily}
	p := New([]string{"BTC-USD"}, []PositionConfig{{}}, 100_000, 0, 0, growth)

	p.ApplyCapitalGrowth(dayTS(0))
	if got := p.ApplyCapitalGrowth(dayTS(1)); math.Abs(got-5_000) > 1e-9 {
		t.Errorf("pct injection = %v, want 5000", got)
	}
}

func TestTerminalStatusNeverReentered(t *testing.T) {
	tr := NewSignalBuy(0, "BTC-USD", 1, dayTS(0))
	tr.MarkRejected(ReasonTradeSize)
	tr.MarkFailed(ReasonInsufficientCash)

	if tr.Status != domain.TradeRejected || tr.Reason != ReasonTradeSize {
		t.Errorf("terminal state re-entered: %s/%q", tr.Status, tr.Reason)
	}

	// An executed trade must also be immune to later transitions, and a
	// resolved trade is skipped by ExecuteTrades entirely.
	p := newTestPortfolio(10_000)
	p.ExecuteTrades([]*Trade{tr}, []float64{100, 0}, dayTS(1))
	if tr.Status != domain.TradeRejected {
		t.Errorf("rejected trade was executed: %s", tr.Status)
	}
}

func TestPositionReopenedAfterClose(t *testing.T) {
	p := newTestPortfolio(100_000)
	p.ExecuteTrades([]*Trade{NewSignalBuy(0, "BTC-USD", 1, dayTS(0))}, []float64{100, 0}, dayTS(0))
	p.ExecuteTrades([]*Trade{NewSignalSell(0, "BTC-USD", 1, dayTS(1))}, []float64{120, 0}, dayTS(1))

	pos := p.Position(0)
	if pos.Open() {
		t.Fatal("position still open after full exit")
	}

	p.ExecuteTrades([]*Trade{NewSignalBuy(0, "BTC-USD", 2, dayTS(2))}, []float64{150, 0}, dayTS(2))
	if p.Position(0) != pos {
		t.Error("position record replaced instead of reopened")
	}
	if !pos.Open() || pos.AvgEntryPrice != 150 {
		t.Errorf("reopened position qty=%v avg=%v, want 2 @ 150", pos.Quantity, pos.AvgEntryPrice)
	}
	// Realized P&L from the first round trip is retained.
	if pos.RealizedPnLGross != 20 {
		t.Errorf("retained realized P&L = %v, want 20", pos.RealizedPnLGross)
	}
}
