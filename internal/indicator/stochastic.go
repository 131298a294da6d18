package indicator

// Stochastic is a streaming stochastic oscillator. Raw %K compares the close
// to the rolling high/low range over the lookback window (0 on a degenerate
// range); smoothed %K is the simple average of the last `smooth` raw values.
type Stochastic struct {
	highs *ring
	lows  *ring
	raws  *ring

	raw      float64
	smoothed float64
}

// NewStochastic creates a stochastic oscillator with the given lookback and
// smoothing window (conventionally 14 and 3).
func NewStochastic(period, smooth int) *Stochastic {
	return &Stochastic{
		highs: newRing(period),
		lows:  newRing(period),
		raws:  newRing(smooth),
	}
}

// Update consumes one bar.
func (s *Stochastic) Update(high, low, close float64) {
	s.highs.push(high)
	s.lows.push(low)

	maxHigh := s.highs.max()
	minLow := s.lows.min()

	if maxHigh == minLow {
		s.raw = 0
	} else {
		s.raw = 100 * (close - minLow) / (maxHigh - minLow)
	}

	s.raws.push(s.raw)
	s.smoothed = s.raws.mean()
}

// Ready reports whether both the lookback and smoothing windows are full.
func (s *Stochastic) Ready() bool { return s.highs.full() && s.raws.full() }

// K returns the smoothed %K value.
func (s *Stochastic) K() float64 { return s.smoothed }

// Raw returns the latest unsmoothed %K value.
func (s *Stochastic) Raw() float64 { return s.raw }

// Oversold reports smoothed %K < threshold.
func (s *Stochastic) Oversold(threshold float64) bool {
	return s.Ready() && s.smoothed < threshold
}

// Overbought reports smoothed %K > threshold.
func (s *Stochastic) Overbought(threshold float64) bool {
	return s.Ready() && s.smoothed > threshold
}
