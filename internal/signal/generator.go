package signal

import (
	"fmt"

	"saturn/internal/domain"
)

// Bounds on the signal universe. Exceeding either is a setup error, caught
// before any simulation state is created.
const (
	MaxAssets          = 64
	MaxSignalsPerAsset = 16
)

// Generator owns, per asset index, an ordered list of strategy instances and
// fuses their votes into one per-asset decision by plurality.
type Generator struct {
	signals [][]Signal
}

// NewGenerator creates a Generator from per-asset signal lists. The outer
// slice is indexed by asset.
func NewGenerator(perAsset [][]Signal) (*Generator, error) {
	if len(perAsset) > MaxAssets {
		return nil, fmt.Errorf("too many assets: %d (max %d)", len(perAsset), MaxAssets)
	}
	for i, list := range perAsset {
		if len(list) > MaxSignalsPerAsset {
			return nil, fmt.Errorf("too many signals for asset %d: %d (max %d)",
				i, len(list), MaxSignalsPerAsset)
		}
	}
	return &Generator{signals: perAsset}, nil
}

// Assets returns the number of configured assets.
func (g *Generator) Assets() int { return len(g.signals) }

// Update feeds one bar to every signal of the given asset.
func (g *Generator) Update(asset int, open, high, low, close float64) {
	for _, s := range g.signals[asset] {
		s.Update(open, high, low, close)
	}
}

// Decide returns the asset's fused decision: the plurality vote over its
// signals' individual votes. Ties, including the vacuous zero-signal case,
// resolve to Hold.
func (g *Generator) Decide(asset int) domain.Vote {
	votes := make([]domain.Vote, 0, len(g.signals[asset]))
	for _, s := range g.signals[asset] {
		votes = append(votes, s.Vote())
	}
	return Plurality(votes)
}

// Decisions returns the fused decision for every asset.
func (g *Generator) Decisions() []domain.Vote {
	out := make([]domain.Vote, len(g.signals))
	for i := range g.signals {
		out[i] = g.Decide(i)
	}
	return out
}

// NewMatrix instantiates every named catalog strategy once per asset,
// producing the per-asset signal lists a Generator consumes. All instances
// share the same parameters but hold independent state.
func NewMatrix(names []string, assets int, p Params) ([][]Signal, error) {
	kinds := make([]Kind, len(names))
	for i, name := range names {
		k, ok := KindFromName(name)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
		kinds[i] = k
	}

	matrix := make([][]Signal, assets)
	for a := range matrix {
		list := make([]Signal, len(kinds))
		for i, k := range kinds {
			s, err := New(k, p)
			if err != nil {
				return nil, err
			}
			list[i] = s
		}
		matrix[a] = list
	}
	return matrix, nil
}

// Plurality selects the most frequent vote value, resolving ties (and the
// empty case) to Hold.
func Plurality(votes []domain.Vote) domain.Vote {
	var buys, sells, holds int
	for _, v := range votes {
		switch v {
		case domain.VoteBuy:
			buys++
		case domain.VoteSell:
			sells++
		default:
			holds++
		}
	}

	if buys > sells && buys > holds {
		return domain.VoteBuy
	}
	if sells > buys && sells > holds {
		return domain.VoteSell
	}
	return domain.VoteHold
}
