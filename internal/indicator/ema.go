// Package indicator implements streaming technical indicators. Every
// indicator consumes one sample per bar through an Update method in O(1)
// time and holds only the minimal sufficient statistics (current values,
// smoothing accumulators, fixed-capacity circular buffers). Indicator state
// is per product and never shared.
package indicator

// EMA is a streaming exponential moving average. The first update seeds the
// value exactly to the first sample; later updates apply the standard
// 2/(period+1) smoothing.
type EMA struct {
	multiplier float64
	value      float64
	seeded     bool
}

// NewEMA creates an EMA over the given period.
func NewEMA(period int) *EMA {
	return &EMA{multiplier: 2.0 / (float64(period) + 1.0)}
}

// Update consumes one price sample and returns the new EMA value.
func (e *EMA) Update(price float64) float64 {
	if !e.seeded {
		e.value = price
		e.seeded = true
		return e.value
	}
	e.value += (price - e.value) * e.multiplier
	return e.value
}

// Value returns the current EMA value. Zero until the first update.
func (e *EMA) Value() float64 { return e.value }

// Ready reports whether the EMA has consumed at least one sample.
func (e *EMA) Ready() bool { return e.seeded }

// TripleEMA tracks three EMAs of the close (fast, medium, slow) and the
// relations between them that trend-following strategies consume.
type TripleEMA struct {
	fast   *EMA
	medium *EMA
	slow   *EMA
	price  float64
}

// NewTripleEMA creates a TripleEMA with the given periods, which must be in
// increasing order for the derived flags to be meaningful.
func NewTripleEMA(fastPeriod, mediumPeriod, slowPeriod int) *TripleEMA {
	return &TripleEMA{
		fast:   NewEMA(fastPeriod),
		medium: NewEMA(mediumPeriod),
		slow:   NewEMA(slowPeriod),
	}
}

// Update consumes one close price.
func (t *TripleEMA) Update(price float64) {
	t.price = price
	t.fast.Update(price)
	t.medium.Update(price)
	t.slow.Update(price)
}

// Fast returns the fast EMA value.
func (t *TripleEMA) Fast() float64 { return t.fast.Value() }

// Medium returns the medium EMA value.
func (t *TripleEMA) Medium() float64 { return t.medium.Value() }

// Slow returns the slow EMA value.
func (t *TripleEMA) Slow() float64 { return t.slow.Value() }

// Ready reports whether all three EMAs are seeded.
func (t *TripleEMA) Ready() bool { return t.slow.Ready() }

// FastAboveMedium reports fast EMA > medium EMA.
func (t *TripleEMA) FastAboveMedium() bool { return t.fast.Value() > t.medium.Value() }

// FastAboveSlow reports fast EMA > slow EMA.
func (t *TripleEMA) FastAboveSlow() bool { return t.fast.Value() > t.slow.Value() }

// PriceAboveMedium reports that the last price is above the medium EMA.
func (t *TripleEMA) PriceAboveMedium() bool { return t.price > t.medium.Value() }

// Bullish reports the full stack alignment fast > medium > slow.
func (t *TripleEMA) Bullish() bool {
	return t.fast.Value() > t.medium.Value() && t.medium.Value() > t.slow.Value()
}
