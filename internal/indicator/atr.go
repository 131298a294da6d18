package indicator

import "math"

// ATR is a streaming Wilder average true range. The first bar's true range
// is high-low; later bars use max(high-low, |high-prevClose|, |low-prevClose|).
// The first `period` true ranges are averaged to seed the value, then each
// sample is smoothed with weight 1/period.
type ATR struct {
	period    int
	prevClose float64
	hasPrev   bool
	sum       float64
	count     int
	value     float64
	ready     bool
}

// NewATR creates an ATR over the given period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Update consumes one bar and returns the current ATR value.
func (a *ATR) Update(high, low, close float64) float64 {
	tr := high - low
	if a.hasPrev {
		tr = math.Max(tr, math.Max(math.Abs(high-a.prevClose), math.Abs(low-a.prevClose)))
	}
	a.prevClose = close
	a.hasPrev = true

	if a.count < a.period {
		a.sum += tr
		a.count++
		if a.count == a.period {
			a.value = a.sum / float64(a.period)
			a.ready = true
		}
		return a.value
	}

	p := float64(a.period)
	a.value = (a.value*(p-1) + tr) / p
	return a.value
}

// Value returns the current ATR value. Zero until Ready.
func (a *ATR) Value() float64 { return a.value }

// Ready reports whether the seeding window has completed.
func (a *ATR) Ready() bool { return a.ready }
