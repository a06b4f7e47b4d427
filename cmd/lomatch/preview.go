package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/lomatch/dataset"
	"github.com/poiesic/lomatch/pipeline"
	"github.com/urfave/cli/v2"
)

func previewCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	objectives, err := dataset.ReadObjectives(c.String("objectives"))
	if err != nil {
		return fmt.Errorf("failed to read objectives: %w", err)
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

	mode := "fuzzy"
	if ix.Active() {
		mode = "smart"
	}
	report, err := pipeline.Preview(ctx, ranker, objectives, pipeline.PreviewConfig{
		TargetDeck:    cfg.TargetDeck,
		SourceDecks:   cfg.Anki.Decks,
		MatchingMode:  mode,
		AutoThreshold: cfg.Matching.AutoThreshold,
		Multi:         cfg.Matching.Multi,
		MaxPerQuery:   cfg.Matching.MaxPerQuery,
		Diversity:     cfg.Matching.Diversity,
		Alpha:         cfg.Matching.Alpha,
		LimitIndex:    cfg.Anki.Limit,
		ExtraQuery:    cfg.Anki.Query,
		Shortlist:     cfg.ShortlistSize(),
	})
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	var w io.Writer = c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
