package indicator

// MACD is a streaming moving average convergence/divergence indicator:
// MACD line = fast EMA - slow EMA, signal line = EMA of the MACD line
// (seeded exactly to the first MACD value), histogram = MACD - signal.
type MACD struct {
	fast       *EMA
	slow       *EMA
	signalMult float64
	signal     float64
	seeded     bool

	macd     float64
	hist     float64
	prevMACD float64
	prevSig  float64
	prevHist float64
}

// NewMACD creates a MACD with the given fast, slow, and signal periods
// (conventionally 12, 26, 9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	return &MACD{
		fast:       NewEMA(fastPeriod),
		slow:       NewEMA(slowPeriod),
		signalMult: 2.0 / (float64(signalPeriod) + 1.0),
	}
}

// Update consumes one price sample.
func (m *MACD) Update(price float64) {
	fast := m.fast.Update(price)
	slow := m.slow.Update(price)

	m.prevMACD = m.macd
	m.prevSig = m.signal
	m.prevHist = m.hist

	m.macd = fast - slow
	if !m.seeded {
		m.signal = m.macd
		m.seeded = true
	} else {
		m.signal += (m.macd - m.signal) * m.signalMult
	}
	m.hist = m.macd - m.signal
}

// Line returns the MACD line value.
func (m *MACD) Line() float64 { return m.macd }

// Signal returns the signal line value.
func (m *MACD) Signal() float64 { return m.signal }

// Histogram returns MACD - signal.
func (m *MACD) Histogram() float64 { return m.hist }

// Ready reports whether the indicator has consumed at least one sample.
func (m *MACD) Ready() bool { return m.seeded }

// Bullish reports MACD line > signal line.
func (m *MACD) Bullish() bool { return m.seeded && m.macd > m.signal }

// CrossedUp reports a bullish crossover on the last update.
func (m *MACD) CrossedUp() bool {
	return m.seeded && m.prevMACD <= m.prevSig && m.macd > m.signal
}

// CrossedDown reports a bearish crossover on the last update.
func (m *MACD) CrossedDown() bool {
	return m.seeded && m.prevMACD >= m.prevSig && m.macd < m.signal
}

// HistogramRising reports that the histogram increased on the last update.
func (m *MACD) HistogramRising() bool { return m.seeded && m.hist > m.prevHist }
