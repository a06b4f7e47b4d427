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


package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/lomatch/core"
)

// DefaultMaxPerQuery caps picks per query in multi mode when unset.
const DefaultMaxPerQuery = 3

// Config controls how a shortlist is resolved.
type Config struct {
	// AutoThreshold enables auto-acceptance of candidates whose combined
	// score is at least this value. Nil disables it.
	AutoThreshold *float64

	// Interactive asks the Prompter to fill the slots auto-acceptance left.
	Interactive bool

	// Multi allows up to MaxPerQuery picks instead of one.
	Multi bool

	// MaxPerQuery caps picks per query in multi mode.
	MaxPerQuery int

	// Diversity filters the final picks.
	Diversity Mode
}

// Slots returns how many candidates one query may accept.
func (c Config) Slots() int {
	if !c.Multi {
		return 1
	}
	return c.MaxPerQuery
}

// Threshold returns a pointer suitable for Config.AutoThreshold.
func Threshold(v float64) *float64 {
	return &v
}

// Engine resolves ranked shortlists into selections.
type Engine struct {
	cfg      Config
	prompter Prompter
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine. prompter may be nil when cfg is not
// interactive.
func NewEngine(cfg Config, prompter Prompter, opts ...Option) (*Engine, error) {
	if cfg.AutoThreshold == nil && !cfg.Interactive {
		return nil, ErrNoSelectionMode
	}
	if cfg.Interactive && prompter == nil {
		return nil, ErrPrompterRequired
	}
	if cfg.MaxPerQuery < 1 {
		cfg.MaxPerQuery = DefaultMaxPerQuery
	}

	e := &Engine{
		cfg:      cfg,
		prompter: prompter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "selection")
	return e, nil
}

// Select resolves shortlist, which must be sorted best first, for query.
//
// A quit from the prompter yields a selection of kind core.KindTerminated
// with no picks and a nil error; callers stop the run on that kind. Errors
// are returned only for failures such as a canceled context or a broken
// input stream.
func (e *Engine) Select(ctx context.Context, query string, shortlist []core.ScoredCandidate) (core.Selection, error) {
	sel := core.Selection{Query: query, Kind: core.KindPending}
	if err := ctx.Err(); err != nil {
		return sel, err
	}
	if len(shortlist) == 0 {
		sel.Kind = core.KindSkipped
		return sel, nil
	}

	slots := e.cfg.Slots()
	sources := make(map[int]core.Kind, slots)

	if e.cfg.AutoThreshold != nil {
		tau := *e.cfg.AutoThreshold
		for i, sc := range shortlist {
			if len(sources) >= slots {
				break
			}
			if sc.Combined >= tau {
				sources[i] = core.KindAuto
			}
		}
		e.logger.Debug("auto selection", "query", query, "accepted", len(sources), "threshold", tau)
	}

	if e.cfg.Interactive && len(sources) < slots {
		choice, err := e.ask(ctx, query, shortlist)
		if err != nil {
			return sel, err
		}
		switch choice.Action {
		case ActionQuit:
			sel.Kind = core.KindTerminated
			return sel, nil
		case ActionPick:
			for _, r := range choice.Ranks {
				if _, ok := sources[r]; !ok {
					sources[r] = core.KindInteractive
				}
			}
		}
	}

	ranks := make([]int, 0, len(sources))
	for r := range sources {
		ranks = append(ranks, r)
	}
	slices.Sort(ranks)
	if len(ranks) > slots {
		ranks = ranks[:slots]
	}

	picks := make([]core.Pick, len(ranks))
	for i, r := range ranks {
		picks[i] = core.Pick{Rank: r, Candidate: shortlist[r], Source: sources[r]}
	}
	sel.Picks = Diversify(picks, e.cfg.Diversity)
	sel.Kind = kindOf(sel.Picks)
	return sel, nil
}

// ask prompts until the input parses.
func (e *Engine) ask(ctx context.Context, query string, shortlist []core.ScoredCandidate) (Choice, error) {
	if err := e.prompter.Show(query, shortlist, e.cfg.Multi); err != nil {
		return Choice{}, err
	}
	prompt := fmt.Sprintf("Pick [1..%d], (s)kip, (q)uit: ", len(shortlist))
	if e.cfg.Multi {
		prompt = fmt.Sprintf("Pick [1..%d / ranges like 1-3 / comma list], (s)kip, (q)uit: ", len(shortlist))
	}

	for {
		line, err := e.prompter.ReadChoice(ctx, prompt)
		if err != nil {
			if errors.Is(err, core.ErrTerminationRequested) {
				return Choice{Action: ActionQuit}, nil
			}
			return Choice{}, err
		}
		choice, err := ParseChoice(line, len(shortlist), e.cfg.Multi)
		if err != nil {
			e.logger.Debug("rejected selection input", "input", line, "err", err)
			e.prompter.Notify("Invalid input. Try again.")
			continue
		}
		return choice, nil
	}
}

func kindOf(picks []core.Pick) core.Kind {
	if len(picks) == 0 {
		return core.KindSkipped
	}
	for _, p := range picks {
		if p.Source == core.KindInteractive {
			return core.KindInteractive
		}
	}
	return core.KindAuto
}
