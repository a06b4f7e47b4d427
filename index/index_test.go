package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/lomatch/ai/mock"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisVector maps texts about the heart to x, the kidney to y and anything
// else to the diagonal.
func axisVector(text string) []float32 {
	switch {
	case strings.Contains(text, "heart"):
		return []float32{2, 0}
	case strings.Contains(text, "renal"):
		return []float32{0, 3}
	default:
		return []float32{1, 1}
	}
}

func axisEmbedder() *mock.MockEmbedder {
	return mock.NewMockEmbedder().
		WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
			return axisVector(text), nil
		}).
		WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = axisVector(text)
			}
			return out, nil
		})
}

func testPool() []core.Candidate {
	front := func(id int64, v string) core.Candidate {
		return core.NewCandidate(id, "Basic", nil, []core.Field{{Name: "Front", Value: v}})
	}
	return []core.Candidate{
		front(10, "renal failure labs"),
		front(11, "heart failure signs"),
		front(12, "cranial nerves"),
		front(13, "heart murmurs"),
	}
}

func newTestIndex(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Index {
	t.Helper()
	var ix *Index
	var err error
	if embedder == nil {
		ix, err = New(nil, opts...)
	} else {
		ix, err = New(embedder, opts...)
	}
	require.NoError(t, err)
	t.Cleanup(ix.Release)
	return ix
}

func TestIndex_NoEmbedder(t *testing.T) {
	ix := newTestIndex(t, nil)
	ctx := context.Background()

	require.NoError(t, ix.Fit(ctx, testPool()))
	assert.False(t, ix.Active())
	assert.Equal(t, 0, ix.Len())

	hits, err := ix.Query(ctx, "heart", 5)
	assert.NoError(t, err)
	assert.Nil(t, hits)
}

func TestIndex_Query(t *testing.T) {
	ix := newTestIndex(t, axisEmbedder())
	ctx := context.Background()
	require.NoError(t, ix.Fit(ctx, testPool()))
	require.True(t, ix.Active())
	require.Equal(t, 4, ix.Len())

	t.Run("ranked with stable ties", func(t *testing.T) {
		hits, err := ix.Query(ctx, "  HEART failure ", 10)
		require.NoError(t, err)
		require.Len(t, hits, 4)

		order := make([]int, len(hits))
		for i, h := range hits {
			order[i] = h.Index
		}
		assert.Equal(t, []int{1, 3, 2, 0}, order)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
		assert.InDelta(t, 1.0, hits[1].Score, 1e-6)
		assert.InDelta(t, 0.70710678, hits[2].Score, 1e-6)
		assert.InDelta(t, 0.0, hits[3].Score, 1e-6)
	})

	t.Run("truncated to topK", func(t *testing.T) {
		hits, err := ix.Query(ctx, "renal", 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, 0, hits[0].Index)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		hits, err := ix.Query(ctx, "renal", 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})
}

func TestIndex_QueryScoresBounded(t *testing.T) {
	ix := newTestIndex(t, mock.NewMockEmbedder())
	ctx := context.Background()

	pool := make([]core.Candidate, 200)
	for i := range pool {
		pool[i] = core.NewCandidate(int64(i+1), "Basic", []string{fmt.Sprintf("topic%03d", i)}, nil)
	}
	require.NoError(t, ix.Fit(ctx, pool))
	require.True(t, ix.Active())

	for i, c := range pool {
		hits, err := ix.Query(ctx, c.Text, len(pool))
		require.NoError(t, err)
		require.Len(t, hits, len(pool))
		assert.Equal(t, i, hits[0].Index)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
		for _, h := range hits {
			assert.LessOrEqual(t, h.Score, 1.0)
			assert.GreaterOrEqual(t, h.Score, -1.0)
		}
	}
}

func TestIndex_FitFailure(t *testing.T) {
	boom := errors.New("connection refused")
	embedder := axisEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	})
	ix := newTestIndex(t, embedder, WithRetry(2, time.Millisecond))
	ctx := context.Background()

	err := ix.Fit(ctx, testPool())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ix.Active())
	assert.Equal(t, 2, embedder.CallCount())

	hits, err := ix.Query(ctx, "heart", 3)
	assert.NoError(t, err)
	assert.Nil(t, hits)
}

func TestIndex_FitRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	embedder := axisEmbedder()
	embedder.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("503")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = axisVector(text)
		}
		return out, nil
	})
	ix := newTestIndex(t, embedder, WithRetry(3, time.Millisecond))

	require.NoError(t, ix.Fit(context.Background(), testPool()))
	assert.True(t, ix.Active())
	assert.Equal(t, int32(2), calls.Load())
}

func TestIndex_CountMismatch(t *testing.T) {
	embedder := axisEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	})
	ix := newTestIndex(t, embedder, WithRetry(1, time.Millisecond))

	err := ix.Fit(context.Background(), testPool())
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestIndex_QueryFailure(t *testing.T) {
	embedder := axisEmbedder()
	ix := newTestIndex(t, embedder)
	ctx := context.Background()
	require.NoError(t, ix.Fit(ctx, testPool()))

	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("timeout")
	})
	_, err := ix.Query(ctx, "heart", 3)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)

	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})
	_, err = ix.Query(ctx, "heart", 3)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_Batching(t *testing.T) {
	embedder := axisEmbedder()
	var progress bytes.Buffer
	ix := newTestIndex(t, embedder,
		WithBatchSize(3),
		WithPoolSize(2),
		WithProgress(&progress, 1),
	)

	pool := append(testPool(), core.NewCandidate(14, "Basic", nil, []core.Field{{Name: "Front", Value: "renal tubules"}}))
	require.NoError(t, ix.Fit(context.Background(), pool))

	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 5, embedder.TextsEmbedded())
	assert.Contains(t, progress.String(), "Encoding notes: 5/5")
}

func TestIndex_RefitReplacesState(t *testing.T) {
	ix := newTestIndex(t, axisEmbedder())
	ctx := context.Background()

	require.NoError(t, ix.Fit(ctx, testPool()))
	require.Equal(t, 4, ix.Len())

	require.NoError(t, ix.Fit(ctx, testPool()[:2]))
	assert.Equal(t, 2, ix.Len())

	require.NoError(t, ix.Fit(ctx, nil))
	assert.False(t, ix.Active())
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_Cache(t *testing.T) {
	cache, decisions, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer func() {
		decisions.Close()
		backend.Close()
	}()
	ctx := context.Background()

	first := axisEmbedder()
	ix := newTestIndex(t, first, WithCache(cache, "axis"))
	require.NoError(t, ix.Fit(ctx, testPool()))
	assert.Equal(t, 4, first.TextsEmbedded())

	second := axisEmbedder()
	ix2 := newTestIndex(t, second, WithCache(cache, "axis"))
	require.NoError(t, ix2.Fit(ctx, testPool()))
	assert.Equal(t, 0, second.TextsEmbedded())

	hits, err := ix2.Query(ctx, "heart", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, hits[0].Index)

	third := axisEmbedder()
	ix3 := newTestIndex(t, third, WithCache(cache, "other-model"))
	require.NoError(t, ix3.Fit(ctx, testPool()))
	assert.Equal(t, 4, third.TextsEmbedded())
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(nil, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = New(nil, WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
