package indicator

// Pattern tracks support/resistance levels and a simple trend pattern over
// two independent rolling-extrema windows: a short level window whose rolling
// max/min define resistance/support, and a longer pattern window compared
// against its previous state to classify the trend.
//
// Breakout and proximity flags are evaluated against the levels as they
// stood before the current bar entered the window, so a bar that sets a new
// high still counts as breaking the prior resistance.
type Pattern struct {
	levelHighs *ring
	levelLows  *ring
	patHighs   *ring
	patLows    *ring

	prevPatHigh float64
	prevPatLow  float64
	hasPrevPat  bool

	resistance float64
	support    float64
	hasLevels  bool

	resistanceBreakout bool
	supportBreakdown   bool
	nearResistance     bool
	nearSupport        bool

	proximity float64 // fraction of the level counting as "near" (e.g. 0.03)
}

// NewPattern creates a Pattern detector with the given level and pattern
// window sizes and a proximity fraction for near-level flags.
func NewPattern(levelWindow, patternWindow int, proximity float64) *Pattern {
	return &Pattern{
		levelHighs: newRing(levelWindow),
		levelLows:  newRing(levelWindow),
		patHighs:   newRing(patternWindow),
		patLows:    newRing(patternWindow),
		proximity:  proximity,
	}
}

// Update consumes one bar.
func (p *Pattern) Update(high, low, close float64) {
	// Evaluate level flags against the window before this bar joins it.
	if p.hasLevels {
		p.resistanceBreakout = close > p.resistance
		p.supportBreakdown = close < p.support
		p.nearResistance = !p.resistanceBreakout && close > p.resistance*(1-p.proximity)
		p.nearSupport = !p.supportBreakdown && close < p.support*(1+p.proximity)
	}

	// Snapshot the full pattern window before it shifts.
	if p.patHighs.full() {
		p.prevPatHigh = p.patHighs.max()
		p.prevPatLow = p.patLows.min()
		p.hasPrevPat = true
	}

	p.levelHighs.push(high)
	p.levelLows.push(low)
	p.patHighs.push(high)
	p.patLows.push(low)

	p.resistance = p.levelHighs.max()
	p.support = p.levelLows.min()
	p.hasLevels = p.levelHighs.full()
}

// Ready reports whether both windows are full and a previous pattern window
// exists to compare against.
func (p *Pattern) Ready() bool { return p.hasLevels && p.hasPrevPat }

// Resistance returns the rolling high of the level window.
func (p *Pattern) Resistance() float64 { return p.resistance }

// Support returns the rolling low of the level window.
func (p *Pattern) Support() float64 { return p.support }

// Uptrend reports that both the pattern window's high and low exceed the
// previous window's high and low.
func (p *Pattern) Uptrend() bool {
	return p.hasPrevPat && p.patHighs.max() > p.prevPatHigh && p.patLows.min() > p.prevPatLow
}

// Downtrend reports the symmetric case: both extrema below the previous
// window's.
func (p *Pattern) Downtrend() bool {
	return p.hasPrevPat && p.patHighs.max() < p.prevPatHigh && p.patLows.min() < p.prevPatLow
}

// ResistanceBreakout reports that the last close exceeded the prior
// resistance level.
func (p *Pattern) ResistanceBreakout() bool { return p.resistanceBreakout }

// SupportBreakdown reports that the last close fell through the prior
// support level.
func (p *Pattern) SupportBreakdown() bool { return p.supportBreakdown }

// NearResistance reports that the last close is within the proximity band
// under the resistance level.
func (p *Pattern) NearResistance() bool { return p.nearResistance }

// NearSupport reports that the last close is within the proximity band above
// the support level.
func (p *Pattern) NearSupport() bool { return p.nearSupport }
