package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lomatch"
	"github.com/poiesic/lomatch/ai"
	"github.com/poiesic/lomatch/anki"
	"github.com/poiesic/lomatch/config"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/dataset"
	"github.com/poiesic/lomatch/index"
	"github.com/poiesic/lomatch/search"
	"github.com/urfave/cli/v2"
)

// loadSettings reads the config file and lays explicitly set flags over it.
func loadSettings(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("decks") {
		cfg.Anki.Decks = c.StringSlice("decks")
	}
	if c.IsSet("query") {
		cfg.Anki.Query = c.String("query")
	}
	if c.IsSet("limit-index") {
		cfg.Anki.Limit = c.Int("limit-index")
	}
	if c.IsSet("anki-url") {
		cfg.Anki.URL = c.String("anki-url")
	}
	if c.Bool("no-embeddings") {
		off := false
		cfg.Embedding.Enabled = &off
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("alpha") {
		cfg.Matching.Alpha = c.Float64("alpha")
	}
	if c.IsSet("db") {
		cfg.DBPath = config.ExpandUserPath(c.String("db"))
	}
	if c.IsSet("auto-threshold") {
		v := c.Float64("auto-threshold")
		cfg.Matching.AutoThreshold = &v
	}
	if c.IsSet("multi") {
		cfg.Matching.Multi = c.Bool("multi")
	}
	if c.IsSet("max-per-lo") {
		cfg.Matching.MaxPerQuery = c.Int("max-per-lo")
	}
	if c.IsSet("diversity") {
		cfg.Matching.Diversity = c.String("diversity")
	}
	if c.IsSet("candidates") {
		cfg.Matching.Shortlist = c.Int("candidates")
	}
	if c.IsSet("target-deck") {
		cfg.TargetDeck = c.String("target-deck")
	}
	if c.IsSet("tag") {
		cfg.Tag = c.String("tag")
	}
	if c.IsSet("results") {
		cfg.Results = c.String("results")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newAnkiClient(cfg *config.Config) (*anki.Client, error) {
	return anki.NewClient(cfg.Anki.URL, anki.WithLogger(slog.Default()))
}

// loadPool reads the --pool CSV when given and otherwise queries AnkiConnect.
func loadPool(ctx context.Context, c *cli.Context, cfg *config.Config) ([]core.Candidate, error) {
	if path := c.String("pool"); path != "" {
		pool, err := dataset.ReadCandidates(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidate pool: %w", err)
		}
		if cfg.Anki.Limit > 0 && len(pool) > cfg.Anki.Limit {
			pool = pool[:cfg.Anki.Limit]
		}
		return pool, nil
	}

	client, err := newAnkiClient(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := client.FetchCandidates(ctx, anki.PoolQuery{
		Decks: cfg.Anki.Decks,
		Extra: cfg.Anki.Query,
		Limit: cfg.Anki.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate pool from %s: %w", client.URL(), err)
	}
	return pool, nil
}

func openSession(cfg *config.Config, sessionID string) (*lomatch.Session, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithAPIToken(cfg.Embedding.APIToken),
	)
	s, err := lomatch.NewSession(cfg.DBPath,
		lomatch.WithAIConfig(aiConfig),
		lomatch.WithEmbeddings(cfg.EmbeddingsEnabled()),
		lomatch.WithSessionID(sessionID),
		lomatch.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return s, nil
}

// buildRanker fits the index and wraps it in a ranker. The caller must
// Release the returned index.
func buildRanker(ctx context.Context, c *cli.Context, s *lomatch.Session, cfg *config.Config, pool []core.Candidate) (*search.Ranker, *index.Index, error) {
	if s.EmbeddingsEnabled() {
		fmt.Fprintln(c.App.ErrWriter, "[Embeddings] Building vector index...")
	}
	ix, err := s.BuildIndex(ctx, pool, index.WithProgress(c.App.ErrWriter, 0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build index: %w", err)
	}

	opts := []search.Option{search.WithAlpha(cfg.Matching.Alpha), search.WithLogger(slog.Default())}
	if cfg.Matching.SeedSize > 0 {
		opts = append(opts, search.WithSeedSize(cfg.Matching.SeedSize))
	}
	ranker, err := search.NewRanker(pool, ix, opts...)
	if err != nil {
		ix.Release()
		return nil, nil, err
	}
	return ranker, ix, nil
}
