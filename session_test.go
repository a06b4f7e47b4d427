package lomatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/lomatch/ai"
	"github.com/poiesic/lomatch/ai/mock"
	"github.com/poiesic/lomatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool() []core.Candidate {
	return []core.Candidate{
		core.NewCandidate(1, "Basic", nil, []core.Field{{Name: "Front", Value: "heart failure"}}),
		core.NewCandidate(2, "Basic", nil, []core.Field{{Name: "Front", Value: "kidney stones"}}),
	}
}

func TestNewSession(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		s, err := NewSession(filepath.Join(t.TempDir(), "db"))
		require.NoError(t, err)
		defer s.Close()

		assert.NotEmpty(t, s.ID())
		assert.NotNil(t, s.Decisions())
		assert.True(t, s.EmbeddingsEnabled())
	})

	t.Run("explicit session id", func(t *testing.T) {
		s, err := NewSession("", WithInMemory(), WithSessionID("lecture-07"))
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, "lecture-07", s.ID())
	})

	t.Run("path is a file", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		s, err := NewSession(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("invalid ai config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithEmbeddingModel(""))
		cfg.EmbeddingModel = ""
		_, err := NewSession("", WithInMemory(), WithAIConfig(cfg))
		assert.Error(t, err)
	})
}

func TestSession_BuildIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("embeddings disabled", func(t *testing.T) {
		s, err := NewSession("", WithInMemory(), WithEmbeddings(false))
		require.NoError(t, err)
		defer s.Close()
		assert.False(t, s.EmbeddingsEnabled())

		ix, err := s.BuildIndex(ctx, testPool())
		require.NoError(t, err)
		defer ix.Release()
		assert.False(t, ix.Active())
	})

	t.Run("active with mock provider", func(t *testing.T) {
		provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
		s, err := NewSession("", WithInMemory(), WithProviderFactory(func() (ai.Provider, error) {
			return provider, nil
		}))
		require.NoError(t, err)

		ix, err := s.BuildIndex(ctx, testPool())
		require.NoError(t, err)
		assert.True(t, ix.Active())
		assert.Equal(t, 2, ix.Len())
		ix.Release()

		// A second fit is served from the vector cache.
		calls := provider.GetMockEmbedder().TextsEmbedded()
		ix, err = s.BuildIndex(ctx, testPool())
		require.NoError(t, err)
		assert.True(t, ix.Active())
		assert.Equal(t, calls, provider.GetMockEmbedder().TextsEmbedded())
		ix.Release()

		require.NoError(t, s.Close())
		assert.Equal(t, 1, provider.CloseCount())
	})

	t.Run("backend unavailable degrades", func(t *testing.T) {
		s, err := NewSession("", WithInMemory(), WithProviderFactory(func() (ai.Provider, error) {
			return nil, errors.New("connection refused")
		}))
		require.NoError(t, err)
		defer s.Close()

		ix, err := s.BuildIndex(ctx, testPool())
		require.NoError(t, err)
		defer ix.Release()
		assert.False(t, ix.Active())
	})

	t.Run("canceled", func(t *testing.T) {
		s, err := NewSession("", WithInMemory(), WithProviderFactory(func() (ai.Provider, error) {
			return mock.NewMockProvider(), nil
		}))
		require.NoError(t, err)
		defer s.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = s.BuildIndex(cctx, testPool())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSession_CloseBeforeUse(t *testing.T) {
	built := false
	s, err := NewSession("", WithInMemory(), WithProviderFactory(func() (ai.Provider, error) {
		built = true
		return mock.NewMockProvider(), nil
	}))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.False(t, built)
}
