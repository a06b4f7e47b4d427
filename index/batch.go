package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/lomatch/ai"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

// batchEncoder turns one batch of texts into unit vectors, consulting the
// cache before calling the embedder.
type batchEncoder struct {
	embedder       ai.Embedder
	cache          storage.VectorCache
	model          string
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// cacheKey identifies a vector by model and text so switching models never
// serves stale vectors.
func cacheKey(model, text string) core.ID {
	return core.IDFromContent(model + "|" + text)
}

// encode returns one normalized vector per text, in order.
func (e *batchEncoder) encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	keys := make([]core.ID, len(texts))
	for i, text := range texts {
		keys[i] = cacheKey(e.model, text)
	}

	var cached map[core.ID][]float32
	if e.cache != nil {
		var err error
		cached, err = e.cache.GetVectors(ctx, keys...)
		if err != nil {
			e.logger.Warn("vector cache read failed", "err", err)
			cached = nil
		}
	}

	var missing []int
	for i, key := range keys {
		if vec, ok := cached[key]; ok {
			out[i] = vec
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	pending := make([]string, len(missing))
	for j, i := range missing {
		pending[j] = texts[i]
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = e.embedder.EmbedTexts(ctx, pending)
		return err
	}, e.maxRetries, e.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries, err)
	}
	if len(embeddings) != len(pending) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(pending), len(embeddings))
	}

	fresh := make(map[core.ID][]float32, len(missing))
	for j, i := range missing {
		vec := NormalizeVector(embeddings[j])
		out[i] = vec
		fresh[keys[i]] = vec
	}

	if e.cache != nil {
		if err := e.cache.PutVectors(ctx, fresh); err != nil {
			e.logger.Warn("vector cache write failed", "err", err)
		}
	}
	return out, nil
}
