package indicator

import "math"

// Bollinger maintains Bollinger bands over a fixed window of closes. Mean
// and variance are kept incrementally (Welford update on insert, the exact
// reverse on eviction) so each bar costs O(1). Sample variance uses the
// N-1 divisor. Bands are mean ± k·σ.
type Bollinger struct {
	window *ring
	k      float64

	n    int // samples currently reflected in mean/m2
	mean float64
	m2   float64

	price float64
}

// NewBollinger creates Bollinger bands over `period` closes with band width
// k standard deviations (conventionally 20 and 2).
func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{window: newRing(period), k: k}
}

// Update consumes one close price.
func (b *Bollinger) Update(price float64) {
	b.price = price

	evicted, wasFull := b.window.push(price)
	if wasFull {
		b.remove(evicted)
	}
	b.add(price)
}

func (b *Bollinger) add(x float64) {
	b.n++
	delta := x - b.mean
	b.mean += delta / float64(b.n)
	b.m2 += delta * (x - b.mean)
}

// remove reverses a Welford insertion for the sample leaving the window.
func (b *Bollinger) remove(x float64) {
	if b.n <= 1 {
		b.n = 0
		b.mean = 0
		b.m2 = 0
		return
	}
	n := float64(b.n)
	oldMean := b.mean
	b.mean = (b.mean*n - x) / (n - 1)
	b.m2 -= (x - oldMean) * (x - b.mean)
	if b.m2 < 0 {
		b.m2 = 0 // clamp accumulated rounding error
	}
	b.n--
}

// Ready reports whether the window is full.
func (b *Bollinger) Ready() bool { return b.window.full() }

// Mean returns the window mean.
func (b *Bollinger) Mean() float64 { return b.mean }

// StdDev returns the sample standard deviation of the window.
func (b *Bollinger) StdDev() float64 {
	if b.n < 2 {
		return 0
	}
	return math.Sqrt(b.m2 / float64(b.n-1))
}

// Upper returns mean + k·σ.
func (b *Bollinger) Upper() float64 { return b.mean + b.k*b.StdDev() }

// Lower returns mean - k·σ.
func (b *Bollinger) Lower() float64 { return b.mean - b.k*b.StdDev() }

// AboveUpper reports that the last price closed above the upper band.
func (b *Bollinger) AboveUpper() bool { return b.Ready() && b.price > b.Upper() }

// BelowLower reports that the last price closed below the lower band.
func (b *Bollinger) BelowLower() bool { return b.Ready() && b.price < b.Lower() }

// Squeeze reports that the relative band width (upper-lower)/mean fell below
// the threshold. False when the mean is effectively zero.
func (b *Bollinger) Squeeze(threshold float64) bool {
	if !b.Ready() || math.Abs(b.mean) < 1e-8 {
		return false
	}
	return (b.Upper()-b.Lower())/b.mean < threshold
}

// PercentB returns the position of the last price within the bands, 0 at the
// lower band and 1 at the upper band. 0.5 when the bands are degenerate.
func (b *Bollinger) PercentB() float64 {
	width := b.Upper() - b.Lower()
	if width == 0 {
		return 0.5
	}
	return (b.price - b.Lower()) / width
}
