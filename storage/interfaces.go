package storage

import (
	"context"

	"github.com/poiesic/lomatch/core"
)

// VectorCache stores embedding vectors keyed by a content ID derived from the
// model name and the embedded text. Implementations must be thread-safe.
type VectorCache interface {
	// GetVectors returns the cached vectors for the given keys.
	// Missing keys are absent from the returned map; a miss is not an error.
	GetVectors(ctx context.Context, keys ...core.ID) (map[core.ID][]float32, error)

	// PutVectors stores vectors, replacing any existing entries.
	PutVectors(ctx context.Context, entries map[core.ID][]float32) error

	// Close releases resources held by the cache.
	Close() error
}

// DecisionRepository is an append-only log of per-session decision rows.
type DecisionRepository interface {
	// AppendDecisions stores rows for their sessions.
	// Assigns Seq from a sequence and sets CreatedAt if not already set.
	// Returns the rows with Seq and CreatedAt populated.
	AppendDecisions(ctx context.Context, rows ...*core.DecisionRow) ([]*core.DecisionRow, error)

	// GetSessionDecisions returns a session's rows in append order.
	// Returns an empty slice for an unknown session.
	GetSessionDecisions(ctx context.Context, sessionID string) ([]*core.DecisionRow, error)

	// ListSessions summarizes every recorded session, oldest first.
	ListSessions(ctx context.Context) ([]core.SessionSummary, error)

	// DeleteSession removes a session's rows.
	// Returns ErrNotFound if the session has no rows.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases the sequence held by the repository.
	Close() error
}
