package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// ---------------------------------------------------------------------------
// EMA
// ---------------------------------------------------------------------------

func TestEMASeedsToFirstSample(t *testing.T) {
	e := NewEMA(9)
	if got := e.Update(42.5); got != 42.5 {
		t.Fatalf("first update = %v, want 42.5 exactly", got)
	}
	if !e.Ready() {
		t.Error("Ready() = false after first update")
	}
}

func TestEMAUpdate(t *testing.T) {
	e := NewEMA(9) // multiplier 0.2
	e.Update(10)
	got := e.Update(20)
	if !almostEqual(got, 12, 1e-12) {
		t.Errorf("second update = %v, want 12", got)
	}
}

func TestTripleEMABullish(t *testing.T) {
	te := NewTripleEMA(3, 6, 12)
	for price := 100.0; price <= 130; price += 1 {
		te.Update(price)
	}
	// In a steady uptrend the faster EMA tracks price more closely.
	if !te.Bullish() {
		t.Errorf("Bullish() = false in steady uptrend (fast=%v medium=%v slow=%v)",
			te.Fast(), te.Medium(), te.Slow())
	}
	if !te.PriceAboveMedium() {
		t.Error("PriceAboveMedium() = false in steady uptrend")
	}
}

// ---------------------------------------------------------------------------
// RSI
// ---------------------------------------------------------------------------

func TestRSIBounded(t *testing.T) {
	r := NewRSI(5, 30, 70)
	prices := []float64{10, 12, 11, 15, 13, 16, 14, 18, 17, 20, 19, 15, 16, 12}
	for _, p := range prices {
		r.Update(p)
		if r.Ready() && (r.Value() < 0 || r.Value() > 100) {
			t.Fatalf("RSI value %v out of [0,100]", r.Value())
		}
	}
	if !r.Ready() {
		t.Error("Ready() = false after enough samples")
	}
}

func TestRSIAllGainsIs100(t *testing.T) {
	r := NewRSI(3, 30, 70)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		r.Update(p)
	}
	if r.Value() != 100 {
		t.Errorf("RSI with zero losses = %v, want 100", r.Value())
	}
	if !r.Overbought() {
		t.Error("Overbought() = false at RSI 100")
	}
}

func TestRSIAllLossesOversold(t *testing.T) {
	r := NewRSI(3, 30, 70)
	for _, p := range []float64{10, 9, 8, 7, 6} {
		r.Update(p)
	}
	if r.Value() != 0 {
		t.Errorf("RSI with zero gains = %v, want 0", r.Value())
	}
	if !r.Oversold() {
		t.Error("Oversold() = false at RSI 0")
	}
	if r.Neutral() {
		t.Error("Neutral() = true at RSI 0")
	}
}

func TestRSINotReadyBeforeSeed(t *testing.T) {
	r := NewRSI(14, 30, 70)
	for i := 0; i < 14; i++ { // 14 samples = 13 changes < period
		r.Update(float64(100 + i))
	}
	if r.Ready() {
		t.Error("Ready() = true before the seeding window completed")
	}
	r.Update(115)
	if !r.Ready() {
		t.Error("Ready() = false after period+1 samples")
	}
}

func TestRSIBullishDivergence(t *testing.T) {
	r := NewRSI(3, 30, 70)
	for _, p := range []float64{100, 98, 96, 94, 92, 90} {
		r.Update(p)
	}
	// Straight decline: RSI has not turned up yet.
	if r.BullishDivergence(90-100, 50) {
		t.Error("BullishDivergence fired without an RSI upturn")
	}

	r.Update(91)
	// RSI rose on the bounce while the multi-bar price slope is still
	// negative: divergence.
	if !r.BullishDivergence(91-100, 50) {
		t.Error("BullishDivergence = false for an RSI upturn against a falling price")
	}
	if r.BullishDivergence(91-100, 10) {
		t.Error("BullishDivergence fired with RSI above the threshold")
	}
	if r.BullishDivergence(1, 50) {
		t.Error("BullishDivergence fired with a rising price slope")
	}
}

func TestRSIBullishDivergenceNeedsMultiBarSlope(t *testing.T) {
	// Fed each bar's own price change, the flag can never fire: Wilder RSI
	// only rises on an up bar, so the slope must span several bars.
	r := NewRSI(3, 30, 70)
	prices := []float64{50, 49, 51, 48, 47, 52, 46, 45, 49, 44}
	prev := prices[0]
	r.Update(prev)
	for _, p := range prices[1:] {
		r.Update(p)
		if r.BullishDivergence(p-prev, 100) {
			t.Fatalf("BullishDivergence fired on single-bar change %v", p-prev)
		}
		prev = p
	}
}

// ---------------------------------------------------------------------------
// MACD
// ---------------------------------------------------------------------------

func TestMACDSignalSeededToFirstValue(t *testing.T) {
	m := NewMACD(12, 26, 9)
	m.Update(100)
	if m.Line() != m.Signal() {
		t.Errorf("after first update line=%v signal=%v, want equal", m.Line(), m.Signal())
	}
	if m.Histogram() != 0 {
		t.Errorf("histogram after first update = %v, want 0", m.Histogram())
	}
}

func TestMACDBullishInUptrend(t *testing.T) {
	m := NewMACD(3, 6, 3)
	m.Update(100)
	m.Update(105)
	if !m.Bullish() {
		t.Errorf("Bullish() = false after a rise (line=%v signal=%v)", m.Line(), m.Signal())
	}
	if !m.CrossedUp() {
		t.Error("CrossedUp() = false on the first bullish bar")
	}
}

func TestMACDCrossAndHistogram(t *testing.T) {
	m := NewMACD(3, 6, 3)
	m.Update(100)
	m.Update(105)

	m.Update(90) // sharp drop: MACD line falls through the signal line
	if !m.CrossedDown() {
		t.Error("CrossedDown() = false on the bar the line fell through the signal")
	}
	if m.HistogramRising() {
		t.Error("HistogramRising() = true while momentum is collapsing")
	}

	m.Update(95) // partial recovery: histogram narrows from below
	if !m.HistogramRising() {
		t.Error("HistogramRising() = false while the histogram recovers")
	}
	if m.CrossedDown() {
		t.Error("CrossedDown() = true one bar after the crossover")
	}
}

// ---------------------------------------------------------------------------
// ATR
// ---------------------------------------------------------------------------

func TestATRSeed(t *testing.T) {
	a := NewATR(2)
	a.Update(12, 10, 11) // TR = 2 (no previous close)
	got := a.Update(13, 11, 12)
	// Second TR = max(13-11, |13-11|, |11-11|) = 2; seed = (2+2)/2 = 2.
	if !almostEqual(got, 2, 1e-12) {
		t.Errorf("ATR after seed = %v, want 2", got)
	}
	if !a.Ready() {
		t.Error("Ready() = false after seeding window")
	}
}

func TestATRGapsUsePrevClose(t *testing.T) {
	a := NewATR(1)
	a.Update(10, 9, 10)
	got := a.Update(15, 14, 15) // gap up: TR = |15-10| = 5
	if !almostEqual(got, 5, 1e-12) {
		t.Errorf("ATR after gap = %v, want 5", got)
	}
}

// ---------------------------------------------------------------------------
// Bollinger
// ---------------------------------------------------------------------------

func TestBollingerKnownWindow(t *testing.T) {
	b := NewBollinger(5, 2)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		b.Update(p)
	}
	if !b.Ready() {
		t.Fatal("Ready() = false with a full window")
	}
	if !almostEqual(b.Mean(), 3, 1e-9) {
		t.Errorf("Mean = %v, want 3", b.Mean())
	}
	// Sample variance of 1..5 is 2.5.
	if !almostEqual(b.StdDev(), math.Sqrt(2.5), 1e-9) {
		t.Errorf("StdDev = %v, want sqrt(2.5)", b.StdDev())
	}
}

func TestBollingerSlidingMatchesDirect(t *testing.T) {
	const window = 4
	b := NewBollinger(window, 2)
	prices := []float64{10, 11, 9, 14, 13, 8, 15, 12, 16, 7}
	for i, p := range prices {
		b.Update(p)
		if i+1 < window {
			continue
		}
		// Direct mean/variance over the trailing window.
		lo := i + 1 - window
		sum := 0.0
		for _, q := range prices[lo : i+1] {
			sum += q
		}
		mean := sum / window
		ss := 0.0
		for _, q := range prices[lo : i+1] {
			ss += (q - mean) * (q - mean)
		}
		sd := math.Sqrt(ss / (window - 1))

		if !almostEqual(b.Mean(), mean, 1e-9) {
			t.Fatalf("bar %d: Mean = %v, want %v", i, b.Mean(), mean)
		}
		if !almostEqual(b.StdDev(), sd, 1e-9) {
			t.Fatalf("bar %d: StdDev = %v, want %v", i, b.StdDev(), sd)
		}
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	b := NewBollinger(5, 2)
	prices := []float64{50, 52, 48, 55, 47, 53, 49, 56, 44, 51}
	for _, p := range prices {
		b.Update(p)
		if b.Upper() < b.Mean() || b.Mean() < b.Lower() {
			t.Fatalf("band ordering violated: upper=%v mean=%v lower=%v",
				b.Upper(), b.Mean(), b.Lower())
		}
	}
}

func TestBollingerSqueeze(t *testing.T) {
	b := NewBollinger(3, 2)
	for i := 0; i < 3; i++ {
		b.Update(100)
	}
	if !b.Squeeze(0.05) {
		t.Error("Squeeze = false for constant prices")
	}
	if b.AboveUpper() || b.BelowLower() {
		t.Error("band breach flags set for constant prices")
	}
}

func TestBollingerPercentB(t *testing.T) {
	b := NewBollinger(3, 2)
	for i := 0; i < 3; i++ {
		b.Update(100)
	}
	if got := b.PercentB(); got != 0.5 {
		t.Errorf("PercentB on degenerate bands = %v, want 0.5", got)
	}

	b = NewBollinger(5, 2)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		b.Update(p)
	}
	// Last price 5 against bands 3 ± 2·sqrt(2.5).
	sd := math.Sqrt(2.5)
	want := (5 - (3 - 2*sd)) / (4 * sd)
	if !almostEqual(b.PercentB(), want, 1e-9) {
		t.Errorf("PercentB = %v, want %v", b.PercentB(), want)
	}
}

// ---------------------------------------------------------------------------
// Stochastic
// ---------------------------------------------------------------------------

func TestStochasticDegenerateRangeIsZero(t *testing.T) {
	s := NewStochastic(3, 1)
	for i := 0; i < 4; i++ {
		s.Update(10, 10, 10)
	}
	if s.Raw() != 0 {
		t.Errorf("raw %%K on degenerate range = %v, want 0", s.Raw())
	}
}

func TestStochasticAtRangeTop(t *testing.T) {
	s := NewStochastic(3, 1)
	s.Update(10, 8, 9)
	s.Update(12, 9, 11)
	s.Update(14, 10, 14) // close at the rolling max
	if !s.Ready() {
		t.Fatal("Ready() = false with full windows")
	}
	if !almostEqual(s.K(), 100, 1e-12) {
		t.Errorf("%%K at range top = %v, want 100", s.K())
	}
	if !s.Overbought(80) {
		t.Error("Overbought(80) = false at %K 100")
	}
}

// ---------------------------------------------------------------------------
// Pattern
// ---------------------------------------------------------------------------

func TestPatternUptrend(t *testing.T) {
	p := NewPattern(2, 2, 0.03)
	p.Update(10, 9, 9.5)
	p.Update(11, 10, 10.5)
	p.Update(12, 11, 11.5) // previous window snapshot: high 11, low 9
	if !p.Uptrend() {
		t.Error("Uptrend() = false for strictly rising extrema")
	}
	if p.Downtrend() {
		t.Error("Downtrend() = true for strictly rising extrema")
	}
}

func TestPatternBreakout(t *testing.T) {
	p := NewPattern(2, 4, 0.03)
	p.Update(10, 9, 9.5)
	p.Update(10.5, 9.5, 10) // resistance = 10.5, support = 9
	p.Update(12, 10, 11.5)  // close above prior resistance
	if !p.ResistanceBreakout() {
		t.Error("ResistanceBreakout() = false for close above prior rolling high")
	}
	if p.SupportBreakdown() {
		t.Error("SupportBreakdown() = true for close above prior rolling high")
	}
}

func TestPatternNearSupport(t *testing.T) {
	p := NewPattern(2, 4, 0.05)
	p.Update(10, 9, 9.5)
	p.Update(10.5, 9.2, 10) // support = 9
	p.Update(10.2, 9.1, 9.3) // close within 5% above support
	if !p.NearSupport() {
		t.Error("NearSupport() = false for close just above support")
	}
}

func TestPatternLevelsAndNearResistance(t *testing.T) {
	p := NewPattern(2, 4, 0.05)
	p.Update(10, 9, 9.5)
	p.Update(10.5, 9.2, 10)
	if p.Resistance() != 10.5 {
		t.Errorf("Resistance = %v, want 10.5", p.Resistance())
	}
	if p.Support() != 9 {
		t.Errorf("Support = %v, want 9", p.Support())
	}

	p.Update(10.4, 9.6, 10.2) // close within 5% under resistance, no breach
	if !p.NearResistance() {
		t.Error("NearResistance() = false for close just under resistance")
	}
	if p.ResistanceBreakout() {
		t.Error("ResistanceBreakout() = true without a close above resistance")
	}
	if p.NearSupport() {
		t.Error("NearSupport() = true far above support")
	}
}
