// Package signal implements the closed catalog of trading strategies and
// the per-product signal generator that fuses their votes. Each strategy is
// a fixed composition of streaming indicators plus a boolean decision rule;
// it consumes one bar per update and produces a vote in {-1, 0, +1}.
package signal

import (
	"fmt"

	"saturn/internal/domain"
)

// Signal is one strategy instance bound to one product.
type Signal interface {
	// Update consumes one bar's open/high/low/close.
	Update(open, high, low, close float64)

	// Vote returns the strategy's current decision. Strategies vote Hold
	// until their indicators are seeded.
	Vote() domain.Vote

	// Name returns the strategy kind identifier.
	Name() string
}

// Kind enumerates the strategy catalog. The catalog is closed: there is no
// open-ended strategy expression language.
type Kind int

// Strategy kinds.
const (
	KindEmaRsiMacd Kind = iota + 1
	KindBbRsiOversold
	KindBbRsiOverbought
	KindPatternRsiMacd
	KindTripleEmaPattern
	KindBbSqueezeBreakout
	KindRsiReversal
	KindSupportBounce
	KindUptrendPattern
	KindStochOversold
)

var kindNames = map[Kind]string{
	KindEmaRsiMacd:        "ema-rsi-macd",
	KindBbRsiOversold:     "bb-rsi-oversold",
	KindBbRsiOverbought:   "bb-rsi-overbought",
	KindPatternRsiMacd:    "pattern-rsi-macd",
	KindTripleEmaPattern:  "triple-ema-pattern",
	KindBbSqueezeBreakout: "bb-squeeze-breakout",
	KindRsiReversal:       "rsi-reversal",
	KindSupportBounce:     "support-bounce",
	KindUptrendPattern:    "uptrend-pattern",
	KindStochOversold:     "stoch-oversold",
}

// String returns the kind's identifier, or "unknown" for values outside the
// catalog.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// KindFromName resolves a kind identifier string. The second return value
// reports whether the name is in the catalog.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Params holds the indicator parameters shared by the catalog. Zero fields
// are filled from DefaultParams by New.
type Params struct {
	FastPeriod   int     `yaml:"fast_period" json:"fastPeriod"`
	MediumPeriod int     `yaml:"medium_period" json:"mediumPeriod"`
	SlowPeriod   int     `yaml:"slow_period" json:"slowPeriod"`
	RSIPeriod    int     `yaml:"rsi_period" json:"rsiPeriod"`
	RSILower     float64 `yaml:"rsi_lower" json:"rsiLower"`
	RSIUpper     float64 `yaml:"rsi_upper" json:"rsiUpper"`
	MACDFast     int     `yaml:"macd_fast" json:"macdFast"`
	MACDSlow     int     `yaml:"macd_slow" json:"macdSlow"`
	MACDSignal   int     `yaml:"macd_signal" json:"macdSignal"`
	BBPeriod     int     `yaml:"bb_period" json:"bbPeriod"`
	BBWidth      float64 `yaml:"bb_width" json:"bbWidth"`
	BBSqueeze    float64 `yaml:"bb_squeeze" json:"bbSqueeze"`
	StochPeriod  int     `yaml:"stoch_period" json:"stochPeriod"`
	StochSmooth  int     `yaml:"stoch_smooth" json:"stochSmooth"`
	StochLower   float64 `yaml:"stoch_lower" json:"stochLower"`
	StochUpper   float64 `yaml:"stoch_upper" json:"stochUpper"`
	LevelWindow  int     `yaml:"level_window" json:"levelWindow"`
	PatternWin   int     `yaml:"pattern_window" json:"patternWindow"`
	Proximity    float64 `yaml:"proximity" json:"proximity"`
}

// DefaultParams returns the conventional parameter set.
func DefaultParams() Params {
	return Params{
		FastPeriod:   12,
		MediumPeriod: 26,
		SlowPeriod:   50,
		RSIPeriod:    14,
		RSILower:     30,
		RSIUpper:     70,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBPeriod:     20,
		BBWidth:      2,
		BBSqueeze:    0.05,
		StochPeriod:  14,
		StochSmooth:  3,
		StochLower:   20,
		StochUpper:   80,
		LevelWindow:  20,
		PatternWin:   50,
		Proximity:    0.03,
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.FastPeriod == 0 {
		p.FastPeriod = d.FastPeriod
	}
	if p.MediumPeriod == 0 {
		p.MediumPeriod = d.MediumPeriod
	}
	if p.SlowPeriod == 0 {
		p.SlowPeriod = d.SlowPeriod
	}
	if p.RSIPeriod == 0 {
		p.RSIPeriod = d.RSIPeriod
	}
	if p.RSILower == 0 {
		p.RSILower = d.RSILower
	}
	if p.RSIUpper == 0 {
		p.RSIUpper = d.RSIUpper
	}
	if p.MACDFast == 0 {
		p.MACDFast = d.MACDFast
	}
	if p.MACDSlow == 0 {
		p.MACDSlow = d.MACDSlow
	}
	if p.MACDSignal == 0 {
		p.MACDSignal = d.MACDSignal
	}
	if p.BBPeriod == 0 {
		p.BBPeriod = d.BBPeriod
	}
	if p.BBWidth == 0 {
		p.BBWidth = d.BBWidth
	}
	if p.BBSqueeze == 0 {
		p.BBSqueeze = d.BBSqueeze
	}
	if p.StochPeriod == 0 {
		p.StochPeriod = d.StochPeriod
	}
	if p.StochSmooth == 0 {
		p.StochSmooth = d.StochSmooth
	}
	if p.StochLower == 0 {
		p.StochLower = d.StochLower
	}
	if p.StochUpper == 0 {
		p.StochUpper = d.StochUpper
	}
	if p.LevelWindow == 0 {
		p.LevelWindow = d.LevelWindow
	}
	if p.PatternWin == 0 {
		p.PatternWin = d.PatternWin
	}
	if p.Proximity == 0 {
		p.Proximity = d.Proximity
	}
	return p
}

// New constructs a strategy instance of the given kind.
func New(kind Kind, p Params) (Signal, error) {
	p = p.withDefaults()
	switch kind {
	case KindEmaRsiMacd:
		return newEmaRsiMacd(p), nil
	case KindBbRsiOversold:
		return newBbRsiOversold(p), nil
	case KindBbRsiOverbought:
		return newBbRsiOverbought(p), nil
	case KindPatternRsiMacd:
		return newPatternRsiMacd(p), nil
	case KindTripleEmaPattern:
		return newTripleEmaPattern(p), nil
	case KindBbSqueezeBreakout:
		return newBbSqueezeBreakout(p), nil
	case KindRsiReversal:
		return newRsiReversal(p), nil
	case KindSupportBounce:
		return newSupportBounce(p), nil
	case KindUptrendPattern:
		return newUptrendPattern(p), nil
	case KindStochOversold:
		return newStochOversold(p), nil
	}
	return nil, fmt.Errorf("unknown strategy kind %d", kind)
}
