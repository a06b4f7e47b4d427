// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lomatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/lomatch/ai"
	"github.com/poiesic/lomatch/ai/openai"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/index"
	"github.com/poiesic/lomatch/storage"
	"github.com/poiesic/lomatch/storage/badger"
)

// Session owns the resources of one matching run: the badger store holding
// the vector cache and decision log, and the lazily constructed embedder.
type Session struct {
	id        string
	backend   *badger.Backend
	cache     storage.VectorCache
	decisions storage.DecisionRepository
	embedder  *ai.Lazy
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	aiConfig   *ai.Config
	embeddings bool
	factory    ai.ProviderFactory
	inMemory   bool
	sessionID  string
	logger     *slog.Logger
}

// WithAIConfig sets the embedding backend configuration.
func WithAIConfig(cfg *ai.Config) SessionOption {
	return func(o *sessionOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbeddings turns semantic matching on or off. It is on by default.
func WithEmbeddings(enabled bool) SessionOption {
	return func(o *sessionOptions) {
		o.embeddings = enabled
	}
}

// WithProviderFactory replaces the OpenAI-compatible provider.
func WithProviderFactory(factory ai.ProviderFactory) SessionOption {
	return func(o *sessionOptions) {
		o.factory = factory
	}
}

// WithInMemory keeps all state in memory; the path is ignored.
func WithInMemory() SessionOption {
	return func(o *sessionOptions) {
		o.inMemory = true
	}
}

// WithSessionID sets the ID decision rows are recorded under. A random
// UUID is used by default.
func WithSessionID(id string) SessionOption {
	return func(o *sessionOptions) {
		o.sessionID = id
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSession opens the store at dbPath and prepares, without contacting it,
// the embedding backend.
func NewSession(dbPath string, opts ...SessionOption) (*Session, error) {
	options := &sessionOptions{
		aiConfig:   ai.DefaultConfig(),
		embeddings: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.sessionID == "" {
		options.sessionID = uuid.NewString()
	}
	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(dbPath, options.inMemory, badger.WithBackendLogger(options.logger))
	if err != nil {
		return nil, err
	}

	cache, err := badger.NewVectorCache(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	decisions, err := badger.NewDecisionRepository(backend)
	if err != nil {
		cache.Close()
		backend.Close()
		return nil, err
	}

	s := &Session{
		id:        options.sessionID,
		backend:   backend,
		cache:     cache,
		decisions: decisions,
		aiConfig:  options.aiConfig,
		logger:    options.logger.With("component", "session", "session", options.sessionID),
	}

	if options.embeddings {
		factory := options.factory
		if factory == nil {
			cfg := options.aiConfig
			factory = func() (ai.Provider, error) { return openai.NewProvider(cfg) }
		}
		s.embedder = ai.NewLazy(factory, ai.WithLazyLogger(options.logger))
	}
	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Decisions returns the decision log.
func (s *Session) Decisions() storage.DecisionRepository {
	return s.decisions
}

// EmbeddingsEnabled reports whether the session was configured for
// semantic matching.
func (s *Session) EmbeddingsEnabled() bool {
	return s.embedder != nil
}

// BuildIndex creates an embedding index over pool. When embeddings are
// disabled or the backend is unavailable the returned index is inactive
// and ranking falls back to lexical scoring; only cancellation and setup
// failures are returned as errors. The caller must Release the index.
func (s *Session) BuildIndex(ctx context.Context, pool []core.Candidate, opts ...index.Option) (*index.Index, error) {
	if s.embedder == nil {
		return index.New(nil, opts...)
	}

	opts = append([]index.Option{
		index.WithCache(s.cache, s.aiConfig.EmbeddingModel),
		index.WithLogger(s.logger),
	}, opts...)
	ix, err := index.New(s.embedder, opts...)
	if err != nil {
		return nil, err
	}

	if err := ix.Fit(ctx, pool); err != nil {
		if errors.Is(err, core.ErrBackendUnavailable) {
			s.logger.Warn("embeddings unavailable, using lexical matching only", "err", err)
			return ix, nil
		}
		ix.Release()
		return nil, err
	}
	return ix, nil
}

// Close releases the embedder and the store.
func (s *Session) Close() error {
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil {
			s.logger.Error("error closing embedder", "err", err)
		}
	}
	if err := s.decisions.Close(); err != nil {
		s.logger.Error("error closing decision log", "err", err)
		return err
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Error("error closing vector cache", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
