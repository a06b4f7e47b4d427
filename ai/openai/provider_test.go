package openai

import (
	"testing"

	"github.com/poiesic/lomatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithEmbeddingHost("http://localhost:11434"))
		p, err := NewProvider(cfg)
		require.NoError(t, err)
		defer p.Close()

		assert.NotNil(t, p.Embedder())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
		assert.Error(t, err)
	})
}

func TestEmbedder_EmptyBatch(t *testing.T) {
	p, err := NewProvider(ai.NewConfig())
	require.NoError(t, err)
	defer p.Close()

	vecs, err := p.Embedder().EmbedTexts(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}
