package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/lomatch/dataset"
	"github.com/poiesic/lomatch/mutation"
	"github.com/poiesic/lomatch/pipeline"
	"github.com/poiesic/lomatch/selection"
	"github.com/urfave/cli/v2"
)

func matchCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	dryRun := c.Bool("dry-run")
	if cfg.TargetDeck == "" && !dryRun {
		return fmt.Errorf("target-deck is required unless --dry-run is set")
	}

	objectives, err := dataset.ReadObjectives(c.String("objectives"))
	if err != nil {
		return fmt.Errorf("failed to read objectives: %w", err)
	}

	diversity, err := selection.ParseDiversityMode(cfg.Matching.Diversity)
	if err != nil {
		return err
	}
	selCfg := selection.Config{
		AutoThreshold: cfg.Matching.AutoThreshold,
		Interactive:   !c.Bool("auto-only"),
		Multi:         cfg.Matching.Multi,
		MaxPerQuery:   cfg.Matching.MaxPerQuery,
		Diversity:     diversity,
	}
	prompter := selection.NewTerminalPrompter(c.App.Reader, c.App.Writer)
	engine, err := selection.NewEngine(selCfg, prompter, selection.WithLogger(slog.Default()))
	if errors.Is(err, selection.ErrNoSelectionMode) {
		return fmt.Errorf("--auto-only requires --auto-threshold")
	}
	if err != nil {
		return err
	}

	out := c.App.ErrWriter
	fmt.Fprintf(out, "[Config] Target deck: %s\n", cfg.TargetDeck)
	if c.String("pool") != "" {
		fmt.Fprintf(out, "[Config] Candidate pool: %s\n", c.String("pool"))
	} else {
		fmt.Fprintf(out, "[Config] Search decks: %s\n", strings.Join(cfg.Anki.Decks, ", "))
	}
	fmt.Fprintf(out, "[Config] Embeddings: %s\n", onOff(cfg.EmbeddingsEnabled()))
	if t := cfg.Matching.AutoThreshold; t != nil {
		fmt.Fprintf(out, "[Config] Auto-approve threshold: %.2f\n", *t)
	}
	if dryRun {
		fmt.Fprintln(out, "[Config] DRY RUN (no changes will be made to Anki).")
	}

	pool, err := loadPool(ctx, c, cfg)
	if err != nil {
		return err
	}
	if len(pool) == 0 {
		return fmt.Errorf("no cards found in the specified decks")
	}
	fmt.Fprintf(out, "[Index] Found %d notes\n", len(pool))

	session, err := openSession(cfg, c.String("session"))
	if err != nil {
		return err
	}
	defer session.Close()

	ranker, ix, err := buildRanker(ctx, c, session, cfg, pool)
	if err != nil {
		return err
	}
	defer ix.Release()

	client, err := newAnkiClient(cfg)
	if err != nil {
		return err
	}
	applier, err := mutation.NewApplier(client,
		mutation.WithUnsuspend(c.Bool("unsuspend")),
		mutation.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	runner, err := pipeline.NewRunner(ranker, engine,
		pipeline.WithShortlistSize(cfg.ShortlistSize()),
		pipeline.WithMutation(applier, cfg.TargetDeck, cfg.Tag, dryRun),
		pipeline.WithDecisionLog(session.Decisions(), session.ID()),
		pipeline.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	report, runErr := runner.Run(ctx, objectives)
	if report != nil {
		if err := writeResults(cfg.Results, report); err != nil {
			return err
		}
		printSummary(c, cfg.Results, report)
	}
	if runErr != nil {
		return fmt.Errorf("matching failed: %w", runErr)
	}
	return nil
}

func writeResults(path string, report *pipeline.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	if err := dataset.WriteDecisions(f, report.Rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	return f.Close()
}

func printSummary(c *cli.Context, resultsPath string, report *pipeline.Report) {
	w := c.App.Writer
	rule := strings.Repeat("#", 80)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "Session:  %s\n", report.SessionID)
	fmt.Fprintf(w, "Accepted: %d\n", report.Accepted)
	fmt.Fprintf(w, "Skipped:  %d\n", report.Skipped)
	if report.Terminated {
		fmt.Fprintln(w, "Stopped early at user request.")
	}
	for _, m := range report.Failed() {
		fmt.Fprintf(w, "Failed to modify notes %v for %q: %v\n", m.Request.IDs, m.Query, m.Err)
	}
	if abs, err := filepath.Abs(resultsPath); err == nil {
		resultsPath = abs
	}
	fmt.Fprintf(w, "Saved log: %s\n", resultsPath)
	fmt.Fprintln(w, rule)
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
