package indicator

// RSI is a streaming Wilder relative strength index. Raw gains and losses
// are accumulated for the first `period` price changes and averaged to seed
// the smoothed averages; afterwards each change is smoothed with weight
// 1/period. The value is always in [0, 100] and defined as 100 when the
// average loss is zero.
type RSI struct {
	period    int
	lower     float64 // oversold threshold
	upper     float64 // overbought threshold
	prevPrice float64
	hasPrev   bool
	sumGain   float64
	sumLoss   float64
	changes   int
	avgGain   float64
	avgLoss   float64
	value     float64
	prevValue float64
	ready     bool
}

// NewRSI creates an RSI over the given period with oversold/overbought zone
// thresholds (conventionally 30 and 70).
func NewRSI(period int, lower, upper float64) *RSI {
	return &RSI{period: period, lower: lower, upper: upper}
}

// Update consumes one price sample. The first sample only establishes the
// reference price and produces no change.
func (r *RSI) Update(price float64) {
	if !r.hasPrev {
		r.prevPrice = price
		r.hasPrev = true
		return
	}

	change := price - r.prevPrice
	r.prevPrice = price

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.changes < r.period {
		r.sumGain += gain
		r.sumLoss += loss
		r.changes++
		if r.changes == r.period {
			r.avgGain = r.sumGain / float64(r.period)
			r.avgLoss = r.sumLoss / float64(r.period)
			r.value = r.compute()
			r.prevValue = r.value
			r.ready = true
		}
		return
	}

	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.prevValue = r.value
	r.value = r.compute()
}

func (r *RSI) compute() float64 {
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}

// Value returns the current RSI value. Zero until Ready.
func (r *RSI) Value() float64 { return r.value }

// Ready reports whether the seeding window has completed.
func (r *RSI) Ready() bool { return r.ready }

// Oversold reports value < lower threshold.
func (r *RSI) Oversold() bool { return r.ready && r.value < r.lower }

// Overbought reports value > upper threshold.
func (r *RSI) Overbought() bool { return r.ready && r.value > r.upper }

// Neutral reports lower <= value <= upper.
func (r *RSI) Neutral() bool { return r.ready && !r.Oversold() && !r.Overbought() }

// Below reports value < threshold, for strategy-specific cutoffs outside the
// configured zones.
func (r *RSI) Below(threshold float64) bool { return r.ready && r.value < threshold }

// BullishDivergence is a heuristic flag: the last price change was negative
// while the RSI rose, with the RSI still under the given threshold.
func (r *RSI) BullishDivergence(priceChange, threshold float64) bool {
	return r.ready && priceChange < 0 && r.value > r.prevValue && r.value < threshold
}
