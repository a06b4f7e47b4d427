package ai

import "context"

// Embedder turns objectives and note text into vectors. Implementations are
// shared by the index worker pool and must tolerate concurrent calls.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider owns an embedding backend. Its Embedder must not be used after
// Close.
type Provider interface {
	Embedder() Embedder
	Close() error
}
