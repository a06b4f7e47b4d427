package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/lexical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	active  bool
	hits    []core.Hit
	err     error
	queries []string
	topKs   []int
}

func (s *stubIndex) Active() bool { return s.active }

func (s *stubIndex) Query(ctx context.Context, text string, topK int) ([]core.Hit, error) {
	s.queries = append(s.queries, text)
	s.topKs = append(s.topKs, topK)
	return s.hits, s.err
}

type recordingMonitor struct {
	started   string
	seeded    []core.Hit
	fallback  error
	scored    int
	finished  []core.ScoredCandidate
	finishHit bool
}

func (m *recordingMonitor) Start(q string)                               { m.started = q }
func (m *recordingMonitor) AfterSemanticSeed(h []core.Hit)               { m.seeded = h }
func (m *recordingMonitor) SemanticFallback(err error)                   { m.fallback = err }
func (m *recordingMonitor) AfterLexicalScoring(s []core.ScoredCandidate) { m.scored = len(s) }
func (m *recordingMonitor) Finish(r []core.ScoredCandidate) {
	m.finished = r
	m.finishHit = true
}

func front(id int64, v string) core.Candidate {
	return core.NewCandidate(id, "Basic", nil, []core.Field{{Name: "Front", Value: v}})
}

func scenarioPool() []core.Candidate {
	return []core.Candidate{
		front(1, "renal failure labs"),
		front(2, "heart failure signs"),
		front(3, "cranial nerve exam"),
		front(4, "left heart failure signs and symptoms"),
	}
}

func assertSortedDesc(t *testing.T, results []core.ScoredCandidate) {
	t.Helper()
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Combined, results[i].Combined, "position %d", i)
	}
}

func TestNewRanker_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r, err := NewRanker(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultAlpha, r.alpha)
		assert.Equal(t, DefaultSeedSize, r.seedSize)
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		_, err := NewRanker(nil, nil, WithLogger(nil))
		assert.NoError(t, err)
	})

	t.Run("invalid alpha", func(t *testing.T) {
		_, err := NewRanker(nil, nil, WithAlpha(1.5))
		assert.ErrorIs(t, err, ErrInvalidAlpha)
	})

	t.Run("invalid seed size", func(t *testing.T) {
		_, err := NewRanker(nil, nil, WithSeedSize(0))
		assert.ErrorIs(t, err, ErrInvalidSeedSize)
	})
}

func TestRank_LexicalScenario(t *testing.T) {
	r, err := NewRanker(scenarioPool(), nil, WithLogger(slog.Default()))
	require.NoError(t, err)

	results, err := r.Rank(context.Background(), "Signs of HEART failure", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assertSortedDesc(t, results)

	top := results[0].Candidate.ID
	assert.Contains(t, []int64{2, 4}, top)

	var heart, renal core.ScoredCandidate
	for _, sc := range results {
		assert.Equal(t, sc.Lexical, sc.Combined)
		assert.Zero(t, sc.Semantic)
		switch sc.Candidate.ID {
		case 2:
			heart = sc
		case 1:
			renal = sc
		}
	}
	assert.Greater(t, heart.Combined, renal.Combined)
}

func TestRank_LengthAndOrdering(t *testing.T) {
	r, err := NewRanker(scenarioPool(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, k := range []int{1, 2, 4, 10} {
		results, err := r.Rank(ctx, "failure", k)
		require.NoError(t, err)
		assert.Len(t, results, min(k, 4))
		assertSortedDesc(t, results)
	}

	results, err := r.Rank(ctx, "failure", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRank_EmptyPool(t *testing.T) {
	r, err := NewRanker(nil, &stubIndex{active: true})
	require.NoError(t, err)

	mon := &recordingMonitor{}
	results, err := r.RankWithMonitor(context.Background(), "anything", 5, mon)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, mon.finishHit)
}

func TestRank_StableTies(t *testing.T) {
	pool := []core.Candidate{
		front(7, "same text"),
		front(8, "same text"),
		front(9, "same text"),
	}
	r, err := NewRanker(pool, nil)
	require.NoError(t, err)

	results, err := r.Rank(context.Background(), "same", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{results[0].Position, results[1].Position, results[2].Position})
}

func TestRank_SemanticFusion(t *testing.T) {
	idx := &stubIndex{
		active: true,
		hits:   []core.Hit{{Index: 0, Score: 0.9}, {Index: 1, Score: 0.2}},
	}
	r, err := NewRanker(scenarioPool(), idx, WithSeedSize(5))
	require.NoError(t, err)

	mon := &recordingMonitor{}
	results, err := r.RankWithMonitor(context.Background(), "  Signs of heart FAILURE", 10, mon)
	require.NoError(t, err)

	// Only seeded candidates are ranked.
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Candidate.ID)
	assert.Equal(t, int64(2), results[1].Candidate.ID)

	for _, sc := range results {
		assert.InDelta(t, 0.6*sc.Semantic+0.4*sc.Lexical, sc.Combined, 1e-12)
		assert.InDelta(t, lexical.Score("signs of heart failure", sc.Candidate.Text), sc.Lexical, 1e-12)
	}

	assert.Equal(t, []string{"signs of heart failure"}, idx.queries)
	assert.Equal(t, []int{5}, idx.topKs)
	assert.Len(t, mon.seeded, 2)
	assert.Equal(t, 2, mon.scored)
	assert.Nil(t, mon.fallback)
}

func TestRank_AlphaOneIsPureSemantic(t *testing.T) {
	idx := &stubIndex{
		active: true,
		hits:   []core.Hit{{Index: 2, Score: 0.7}, {Index: 1, Score: 0.5}},
	}
	r, err := NewRanker(scenarioPool(), idx, WithAlpha(1))
	require.NoError(t, err)

	results, err := r.Rank(context.Background(), "heart failure", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.7, results[0].Combined, 1e-12)
	assert.Equal(t, 2, results[0].Position)
}

func TestRank_FallsBackOnEmbeddingFailure(t *testing.T) {
	boom := errors.New("embedding timeout")
	idx := &stubIndex{active: true, err: boom}
	r, err := NewRanker(scenarioPool(), idx)
	require.NoError(t, err)

	mon := &recordingMonitor{}
	results, err := r.RankWithMonitor(context.Background(), "heart failure signs", 10, mon)
	require.NoError(t, err)

	assert.Len(t, results, 4)
	assert.ErrorIs(t, mon.fallback, boom)
	for _, sc := range results {
		assert.Equal(t, sc.Lexical, sc.Combined)
	}
}

func TestRank_InactiveIndexIsNotQueried(t *testing.T) {
	idx := &stubIndex{active: false}
	r, err := NewRanker(scenarioPool(), idx)
	require.NoError(t, err)

	results, err := r.Rank(context.Background(), "heart", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Empty(t, idx.queries)
}

func TestRank_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx := &stubIndex{active: true, err: context.Canceled}
	r, err := NewRanker(scenarioPool(), idx)
	require.NoError(t, err)

	_, err = r.Rank(ctx, "heart", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
