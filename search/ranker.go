package search

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/lexical"
)

const (
	// DefaultAlpha weights the semantic signal in the fused score.
	DefaultAlpha = 0.6

	// DefaultSeedSize is how many embedding neighbors are rescored lexically.
	DefaultSeedSize = 80
)

// SemanticIndex is the part of an embedding index the ranker needs.
type SemanticIndex interface {
	Active() bool
	Query(ctx context.Context, text string, topK int) ([]core.Hit, error)
}

// Ranker scores a fixed candidate pool against queries.
type Ranker struct {
	pool     []core.Candidate
	index    SemanticIndex
	scorer   lexical.Scorer
	alpha    float64
	seedSize int
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithAlpha sets the semantic weight of the fused score.
func WithAlpha(alpha float64) Option {
	return func(r *Ranker) error {
		if alpha < 0 || alpha > 1 {
			return ErrInvalidAlpha
		}
		r.alpha = alpha
		return nil
	}
}

// WithSeedSize sets how many embedding neighbors are considered per query.
func WithSeedSize(k int) Option {
	return func(r *Ranker) error {
		if k < 1 {
			return ErrInvalidSeedSize
		}
		r.seedSize = k
		return nil
	}
}

// WithScorer replaces the default lexical scorer.
func WithScorer(s lexical.Scorer) Option {
	return func(r *Ranker) error {
		r.scorer = s
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a ranker over pool. idx may be nil for lexical-only
// ranking; it must have been fit on the same pool otherwise.
func NewRanker(pool []core.Candidate, idx SemanticIndex, opts ...Option) (*Ranker, error) {
	r := &Ranker{
		pool:     pool,
		index:    idx,
		alpha:    DefaultAlpha,
		seedSize: DefaultSeedSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "ranker")
	return r, nil
}

// Rank returns up to kFinal candidates for query, best first.
func (r *Ranker) Rank(ctx context.Context, query string, kFinal int) ([]core.ScoredCandidate, error) {
	return r.RankWithMonitor(ctx, query, kFinal, nil)
}

// RankWithMonitor ranks like Rank and reports each stage to monitor.
func (r *Ranker) RankWithMonitor(ctx context.Context, query string, kFinal int, monitor RankMonitor) ([]core.ScoredCandidate, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	if len(r.pool) == 0 || kFinal <= 0 {
		results := []core.ScoredCandidate{}
		monitor.Finish(results)
		return results, nil
	}

	q := core.Normalize(query)

	hits, err := r.semanticSeed(ctx, q)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("semantic seeding failed, ranking lexically", "query", query, "err", err)
		monitor.SemanticFallback(err)
		hits = nil
	}
	semantic := len(hits) > 0
	if semantic {
		monitor.AfterSemanticSeed(hits)
	}

	var scored []core.ScoredCandidate
	if semantic {
		scored = make([]core.ScoredCandidate, 0, len(hits))
		for _, h := range hits {
			if h.Index < 0 || h.Index >= len(r.pool) {
				continue
			}
			lex := r.scorer.Score(q, r.pool[h.Index].Text)
			scored = append(scored, core.ScoredCandidate{
				Candidate: r.pool[h.Index],
				Position:  h.Index,
				Combined:  r.alpha*h.Score + (1-r.alpha)*lex,
				Lexical:   lex,
				Semantic:  h.Score,
			})
		}
	} else {
		scored = make([]core.ScoredCandidate, len(r.pool))
		for i := range r.pool {
			lex := r.scorer.Score(q, r.pool[i].Text)
			scored[i] = core.ScoredCandidate{
				Candidate: r.pool[i],
				Position:  i,
				Combined:  lex,
				Lexical:   lex,
			}
		}
	}
	monitor.AfterLexicalScoring(scored)

	slices.SortStableFunc(scored, func(a, b core.ScoredCandidate) int {
		switch {
		case a.Combined > b.Combined:
			return -1
		case a.Combined < b.Combined:
			return 1
		default:
			return 0
		}
	})
	if kFinal < len(scored) {
		scored = scored[:kFinal]
	}

	monitor.Finish(scored)
	return scored, nil
}

func (r *Ranker) semanticSeed(ctx context.Context, q string) ([]core.Hit, error) {
	if r.index == nil || !r.index.Active() {
		return nil, nil
	}
	return r.index.Query(ctx, q, r.seedSize)
}

// PoolSize returns the number of candidates the ranker scores against.
func (r *Ranker) PoolSize() int {
	return len(r.pool)
}
