package signal

import (
	"saturn/internal/domain"
	"saturn/internal/indicator"
)

// Compile-time interface checks.
var (
	_ Signal = (*emaRsiMacd)(nil)
	_ Signal = (*bbRsiOversold)(nil)
	_ Signal = (*bbRsiOverbought)(nil)
	_ Signal = (*patternRsiMacd)(nil)
	_ Signal = (*tripleEmaPattern)(nil)
	_ Signal = (*bbSqueezeBreakout)(nil)
	_ Signal = (*rsiReversal)(nil)
	_ Signal = (*supportBounce)(nil)
	_ Signal = (*uptrendPattern)(nil)
	_ Signal = (*stochOversold)(nil)
)

// ---------------------------------------------------------------------------
// ema-rsi-macd: trend confirmation. Buy when the fast EMA is above the
// medium EMA, RSI is in the neutral zone, and MACD is bullish.
// ---------------------------------------------------------------------------

type emaRsiMacd struct {
	ema  *indicator.TripleEMA
	rsi  *indicator.RSI
	macd *indicator.MACD
}

func newEmaRsiMacd(p Params) *emaRsiMacd {
	return &emaRsiMacd{
		ema:  indicator.NewTripleEMA(p.FastPeriod, p.MediumPeriod, p.SlowPeriod),
		rsi:  indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
		macd: indicator.NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
	}
}

func (s *emaRsiMacd) Name() string { return KindEmaRsiMacd.String() }

func (s *emaRsiMacd) Update(_, _, _, close float64) {
	s.ema.Update(close)
	s.rsi.Update(close)
	s.macd.Update(close)
}

func (s *emaRsiMacd) Vote() domain.Vote {
	if !s.ema.Ready() || !s.rsi.Ready() {
		return domain.VoteHold
	}
	if s.ema.FastAboveMedium() && s.rsi.Neutral() && s.macd.Bullish() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// bb-rsi-oversold: mean reversion long. Buy when the close is below the
// lower Bollinger band while RSI is oversold.
// ---------------------------------------------------------------------------

type bbRsiOversold struct {
	bb  *indicator.Bollinger
	rsi *indicator.RSI
}

func newBbRsiOversold(p Params) *bbRsiOversold {
	return &bbRsiOversold{
		bb:  indicator.NewBollinger(p.BBPeriod, p.BBWidth),
		rsi: indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
	}
}

func (s *bbRsiOversold) Name() string { return KindBbRsiOversold.String() }

func (s *bbRsiOversold) Update(_, _, _, close float64) {
	s.bb.Update(close)
	s.rsi.Update(close)
}

func (s *bbRsiOversold) Vote() domain.Vote {
	if s.bb.BelowLower() && s.rsi.Oversold() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// bb-rsi-overbought: mean reversion exit. Sell when the close is above the
// upper Bollinger band while RSI is overbought.
// ---------------------------------------------------------------------------

type bbRsiOverbought struct {
	bb  *indicator.Bollinger
	rsi *indicator.RSI
}

func newBbRsiOverbought(p Params) *bbRsiOverbought {
	return &bbRsiOverbought{
		bb:  indicator.NewBollinger(p.BBPeriod, p.BBWidth),
		rsi: indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
	}
}

func (s *bbRsiOverbought) Name() string { return KindBbRsiOverbought.String() }

func (s *bbRsiOverbought) Update(_, _, _, close float64) {
	s.bb.Update(close)
	s.rsi.Update(close)
}

func (s *bbRsiOverbought) Vote() domain.Vote {
	if s.bb.AboveUpper() && s.rsi.Overbought() {
		return domain.VoteSell
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// pattern-rsi-macd: breakout with momentum. Buy on a resistance breakout
// while RSI is under 80 and MACD is bullish.
// ---------------------------------------------------------------------------

type patternRsiMacd struct {
	pattern *indicator.Pattern
	rsi     *indicator.RSI
	macd    *indicator.MACD
}

func newPatternRsiMacd(p Params) *patternRsiMacd {
	return &patternRsiMacd{
		pattern: indicator.NewPattern(p.LevelWindow, p.PatternWin, p.Proximity),
		rsi:     indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
		macd:    indicator.NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
	}
}

func (s *patternRsiMacd) Name() string { return KindPatternRsiMacd.String() }

func (s *patternRsiMacd) Update(_, high, low, close float64) {
	s.pattern.Update(high, low, close)
	s.rsi.Update(close)
	s.macd.Update(close)
}

func (s *patternRsiMacd) Vote() domain.Vote {
	if s.pattern.ResistanceBreakout() && s.rsi.Below(80) && s.macd.Bullish() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// triple-ema-pattern: full trend alignment. Buy when the EMA stack is
// bullish, the pattern window shows an uptrend, MACD is bullish, and RSI is
// neutral.
// ---------------------------------------------------------------------------

type tripleEmaPattern struct {
	ema     *indicator.TripleEMA
	pattern *indicator.Pattern
	macd    *indicator.MACD
	rsi     *indicator.RSI
}

func newTripleEmaPattern(p Params) *tripleEmaPattern {
	return &tripleEmaPattern{
		ema:     indicator.NewTripleEMA(p.FastPeriod, p.MediumPeriod, p.SlowPeriod),
		pattern: indicator.NewPattern(p.LevelWindow, p.PatternWin, p.Proximity),
		macd:    indicator.NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
		rsi:     indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
	}
}

func (s *tripleEmaPattern) Name() string { return KindTripleEmaPattern.String() }

func (s *tripleEmaPattern) Update(_, high, low, close float64) {
	s.ema.Update(close)
	s.pattern.Update(high, low, close)
	s.macd.Update(close)
	s.rsi.Update(close)
}

func (s *tripleEmaPattern) Vote() domain.Vote {
	if s.ema.Bullish() && s.pattern.Uptrend() && s.macd.Bullish() && s.rsi.Neutral() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// bb-squeeze-breakout: volatility expansion. Buy when a band squeeze
// resolves with a close above the upper band and bullish MACD.
// ---------------------------------------------------------------------------

type bbSqueezeBreakout struct {
	bb      *indicator.Bollinger
	macd    *indicator.MACD
	squeeze float64
}

func newBbSqueezeBreakout(p Params) *bbSqueezeBreakout {
	return &bbSqueezeBreakout{
		bb:      indicator.NewBollinger(p.BBPeriod, p.BBWidth),
		macd:    indicator.NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
		squeeze: p.BBSqueeze,
	}
}

func (s *bbSqueezeBreakout) Name() string { return KindBbSqueezeBreakout.String() }

func (s *bbSqueezeBreakout) Update(_, _, _, close float64) {
	s.bb.Update(close)
	s.macd.Update(close)
}

func (s *bbSqueezeBreakout) Vote() domain.Vote {
	if s.bb.Squeeze(s.squeeze) && s.bb.AboveUpper() && s.macd.Bullish() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// rsi-reversal: oversold bounce in an intact trend. Buy when RSI is oversold
// while the close still holds above the medium EMA.
// ---------------------------------------------------------------------------

type rsiReversal struct {
	rsi *indicator.RSI
	ema *indicator.TripleEMA
}

func newRsiReversal(p Params) *rsiReversal {
	return &rsiReversal{
		rsi: indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
		ema: indicator.NewTripleEMA(p.FastPeriod, p.MediumPeriod, p.SlowPeriod),
	}
}

func (s *rsiReversal) Name() string { return KindRsiReversal.String() }

func (s *rsiReversal) Update(_, _, _, close float64) {
	s.rsi.Update(close)
	s.ema.Update(close)
}

func (s *rsiReversal) Vote() domain.Vote {
	if s.rsi.Oversold() && s.ema.PriceAboveMedium() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// support-bounce: buy near a support level when MACD confirms.
// ---------------------------------------------------------------------------

type supportBounce struct {
	pattern *indicator.Pattern
	macd    *indicator.MACD
}

func newSupportBounce(p Params) *supportBounce {
	return &supportBounce{
		pattern: indicator.NewPattern(p.LevelWindow, p.PatternWin, p.Proximity),
		macd:    indicator.NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
	}
}

func (s *supportBounce) Name() string { return KindSupportBounce.String() }

func (s *supportBounce) Update(_, high, low, close float64) {
	s.pattern.Update(high, low, close)
	s.macd.Update(close)
}

func (s *supportBounce) Vote() domain.Vote {
	if s.pattern.NearSupport() && s.macd.Bullish() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// uptrend-pattern: ride established uptrends. Buy when the EMA stack and the
// pattern window agree on an uptrend and RSI is not overbought.
// ---------------------------------------------------------------------------

type uptrendPattern struct {
	ema     *indicator.TripleEMA
	pattern *indicator.Pattern
	rsi     *indicator.RSI
}

func newUptrendPattern(p Params) *uptrendPattern {
	return &uptrendPattern{
		ema:     indicator.NewTripleEMA(p.FastPeriod, p.MediumPeriod, p.SlowPeriod),
		pattern: indicator.NewPattern(p.LevelWindow, p.PatternWin, p.Proximity),
		rsi:     indicator.NewRSI(p.RSIPeriod, p.RSILower, p.RSIUpper),
	}
}

func (s *uptrendPattern) Name() string { return KindUptrendPattern.String() }

func (s *uptrendPattern) Update(_, high, low, close float64) {
	s.ema.Update(close)
	s.pattern.Update(high, low, close)
	s.rsi.Update(close)
}

func (s *uptrendPattern) Vote() domain.Vote {
	if !s.rsi.Ready() {
		return domain.VoteHold
	}
	if s.ema.Bullish() && s.pattern.Uptrend() && !s.rsi.Overbought() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}

// ---------------------------------------------------------------------------
// stoch-oversold: stochastic dip in a rising market. Buy when smoothed %K is
// oversold while the fast EMA holds above the slow EMA.
// ---------------------------------------------------------------------------

type stochOversold struct {
	stoch *indicator.Stochastic
	fast  *indicator.EMA
	slow  *indicator.EMA
	lower float64
}

func newStochOversold(p Params) *stochOversold {
	return &stochOversold{
		stoch: indicator.NewStochastic(p.StochPeriod, p.StochSmooth),
		fast:  indicator.NewEMA(p.FastPeriod),
		slow:  indicator.NewEMA(p.SlowPeriod),
		lower: p.StochLower,
	}
}

func (s *stochOversold) Name() string { return KindStochOversold.String() }

func (s *stochOversold) Update(_, high, low, close float64) {
	s.stoch.Update(high, low, close)
	s.fast.Update(close)
	s.slow.Update(close)
}

func (s *stochOversold) Vote() domain.Vote {
	if s.stoch.Oversold(s.lower) && s.fast.Value() > s.slow.Value() {
		return domain.VoteBuy
	}
	return domain.VoteHold
}
