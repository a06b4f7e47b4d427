package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/selection"
	"github.com/urfave/cli/v2"
)

// stageLogger logs ranking stages at debug level.
type stageLogger struct {
	logger *slog.Logger
	start  time.Time
}

func (m *stageLogger) Start(query string) {
	m.start = time.Now()
	m.logger.Debug("ranking", "query", query)
}

func (m *stageLogger) AfterSemanticSeed(hits []core.Hit) {
	m.logger.Debug("semantic seed", "hits", len(hits), "elapsed", time.Since(m.start))
}

func (m *stageLogger) SemanticFallback(err error) {
	m.logger.Debug("semantic fallback", "err", err)
}

func (m *stageLogger) AfterLexicalScoring(scored []core.ScoredCandidate) {
	m.logger.Debug("lexical scoring", "scored", len(scored), "elapsed", time.Since(m.start))
}

func (m *stageLogger) Finish(results []core.ScoredCandidate) {
	m.logger.Debug("ranking finished", "results", len(results), "elapsed", time.Since(m.start))
}

func rankCommand(c *cli.Context) error {
	ctx := c.Context

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("an objective to rank is required")
	}

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	pool, err := loadPool(ctx, c, cfg)
	if err != nil {
		return err
	}

	session, err := openSession(cfg, "")
	if err != nil {
		return err
	}
	defer session.Close()

	ranker, ix, err := buildRanker(ctx, c, session, cfg, pool)
	if err != nil {
		return err
	}
	defer ix.Release()

	results, err := ranker.RankWithMonitor(ctx, query, c.Int("candidates"), &stageLogger{logger: slog.Default()})
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "No candidates found.")
		return nil
	}
	return selection.NewTerminalPrompter(c.App.Reader, c.App.Writer).Show(query, results, true)
}
