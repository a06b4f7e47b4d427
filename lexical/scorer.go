package lexical

import "github.com/poiesic/lomatch/core"

// Weights controls how the three sub-ratios are blended. They are tuning
// constants, not derived values.
type Weights struct {
	Set     float64
	Partial float64
	Sorted  float64
}

// DefaultWeights favors token-set robustness.
var DefaultWeights = Weights{Set: 0.5, Partial: 0.3, Sorted: 0.2}

// Breakdown holds the individual sub-ratios for one comparison.
type Breakdown struct {
	Set     float64
	Partial float64
	Sorted  float64
}

// Scorer blends sub-ratios with its Weights. The zero value uses DefaultWeights.
type Scorer struct {
	Weights Weights
}

// Score returns the weighted lexical similarity of query and text in [0,1].
func (s Scorer) Score(query, text string) float64 {
	w := s.Weights
	if w == (Weights{}) {
		w = DefaultWeights
	}
	b := Compare(query, text)
	return clamp01(w.Set*b.Set + w.Partial*b.Partial + w.Sorted*b.Sorted)
}

// Score scores query against text with DefaultWeights.
func Score(query, text string) float64 {
	return Scorer{}.Score(query, text)
}

// Compare normalizes both strings and computes each sub-ratio.
// An empty string on either side scores zero everywhere.
func Compare(query, text string) Breakdown {
	q := core.Normalize(query)
	t := core.Normalize(text)
	if q == "" || t == "" {
		return Breakdown{}
	}
	return Breakdown{
		Set:     TokenSetRatio(q, t),
		Partial: PartialRatio(q, t),
		Sorted:  TokenSortRatio(q, t),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
