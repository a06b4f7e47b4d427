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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lomatch",
		Usage: "Match learning objectives to Anki cards and move the matches into a lecture deck",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML config file (default ~/.lomatch/config.yaml)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "match",
				Usage:  "Rank cards for each objective, select matches and apply them",
				Action: matchCommand,
				Flags: append(poolFlags(), append(selectionFlags(),
					&cli.StringFlag{
						Name:     "objectives",
						Aliases:  []string{"o"},
						Usage:    "CSV with an Objective or LO column, or a text file with one objective per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "target-deck",
						Usage: "Deck to move selected cards into",
					},
					&cli.StringFlag{
						Name:  "tag",
						Usage: "Tag to add to selected notes",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Do not modify Anki; only record the choices",
					},
					&cli.BoolFlag{
						Name:  "auto-only",
						Usage: "Select by threshold only and never prompt",
					},
					&cli.BoolFlag{
						Name:  "unsuspend",
						Usage: "Also unsuspend the cards of selected notes",
					},
					&cli.StringFlag{
						Name:  "results",
						Usage: "Path of the CSV decision log",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session ID to record decisions under (random by default)",
					},
				)...),
			},
			{
				Name:   "preview",
				Usage:  "Print ranked matches and auto selections as JSON without modifying Anki",
				Action: previewCommand,
				Flags: append(poolFlags(), append(selectionFlags(),
					&cli.StringFlag{
						Name:     "objectives",
						Aliases:  []string{"o"},
						Usage:    "CSV with an Objective or LO column, or a text file with one objective per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "target-deck",
						Usage: "Deck that selected cards would be moved into",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Write the JSON report to this file instead of stdout",
					},
				)...),
			},
			{
				Name:      "rank",
				Usage:     "Rank the candidate pool against one objective",
				ArgsUsage: "<objective>",
				Action:    rankCommand,
				Flags: append(poolFlags(),
					&cli.IntFlag{
						Name:  "candidates",
						Usage: "Number of candidates to show",
						Value: 10,
					},
				),
			},
			{
				Name:   "history",
				Usage:  "List recorded sessions or print one session's decisions as CSV",
				Action: historyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session to print",
					},
					&cli.BoolFlag{
						Name:  "delete",
						Usage: "Delete the session given by --session",
					},
				},
			},
		},
	}
}

// poolFlags select the candidate pool, the embedding backend and the store.
func poolFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "decks",
			Usage: "Deck roots to search",
		},
		&cli.StringFlag{
			Name:  "query",
			Usage: "Extra Anki browser query ANDed with the deck filter",
		},
		&cli.IntFlag{
			Name:  "limit-index",
			Usage: "Cap on the number of notes indexed",
		},
		&cli.StringFlag{
			Name:  "pool",
			Usage: "Read candidates from this CSV instead of AnkiConnect",
		},
		&cli.StringFlag{
			Name:  "anki-url",
			Usage: "AnkiConnect URL",
		},
		&cli.BoolFlag{
			Name:  "no-embeddings",
			Usage: "Disable semantic matching and rank lexically",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.Float64Flag{
			Name:  "alpha",
			Usage: "Weight of the embedding score in the combined score (0..1)",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
		},
	}
}

// selectionFlags control shortlist size and selection.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:    "auto-threshold",
			Aliases: []string{"auto-approve-threshold", "min-combo"},
			Usage:   "Auto-accept candidates whose combined score is at least this value",
		},
		&cli.BoolFlag{
			Name:  "multi",
			Usage: "Allow several cards per objective",
		},
		&cli.IntFlag{
			Name:  "max-per-lo",
			Usage: "Maximum cards per objective in multi mode",
		},
		&cli.StringFlag{
			Name:  "diversity",
			Usage: "Diversity constraint among selected cards: none, category or labels",
		},
		&cli.IntFlag{
			Name:  "candidates",
			Usage: "Candidates shown per objective (default 10 with --multi, else 3)",
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
