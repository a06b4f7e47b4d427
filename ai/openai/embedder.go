package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/lomatch/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrVectorCount is returned when the service answers a batch with a
// different number of vectors than texts sent.
var ErrVectorCount = errors.New("embedding service returned wrong number of vectors")

// Embedder embeds note and objective text through an OpenAI-compatible
// embeddings endpoint.
type Embedder struct {
	client embeddings.Embedder
	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	client, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}

	return &Embedder{
		client: client,
		logger: slog.Default().With("component", "embedder", "model", config.EmbeddingModel, "host", config.EmbeddingHost),
	}, nil
}

// EmbedText embeds a single objective.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Warn("query embedding failed", "err", err)
		return nil, err
	}
	return vec, nil
}

// EmbedTexts embeds a batch of candidate texts, preserving order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.client.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Warn("batch embedding failed", "batch", len(texts), "err", err)
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrVectorCount, len(texts), len(vecs))
	}
	e.logger.Debug("embedded batch", "batch", len(texts))
	return vecs, nil
}
