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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

const (
	// DefaultShortlistSize is how many ranked candidates each query sees.
	DefaultShortlistSize = 3

	reasonNoCandidates = "no candidates found"
	reasonNoSelection  = "no candidate selected"
)

// Ranker produces a shortlist for one query.
type Ranker interface {
	Rank(ctx context.Context, query string, kFinal int) ([]core.ScoredCandidate, error)
	PoolSize() int
}

// Selector resolves a shortlist.
type Selector interface {
	Select(ctx context.Context, query string, shortlist []core.ScoredCandidate) (core.Selection, error)
}

// Applier applies accepted picks to the note store.
type Applier interface {
	Apply(ctx context.Context, req core.MutationRequest) (core.MutationResult, error)
}

// MutationOutcome is what happened when one query's picks were applied.
type MutationOutcome struct {
	Query   string
	Request core.MutationRequest
	Result  core.MutationResult
	Err     error
}

// Report summarizes a run.
type Report struct {
	SessionID  string
	Selections []core.Selection
	Rows       []*core.DecisionRow
	Mutations  []MutationOutcome
	Accepted   int
	Skipped    int
	Terminated bool
}

// Failed returns the mutations that did not go through.
func (r *Report) Failed() []MutationOutcome {
	var out []MutationOutcome
	for _, m := range r.Mutations {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Runner processes queries one at a time.
type Runner struct {
	ranker    Ranker
	selector  Selector
	applier   Applier
	decisions storage.DecisionRepository
	sessionID string
	shortlist int
	target    string
	label     string
	dryRun    bool
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithShortlistSize sets how many candidates each query is shown.
// Default is DefaultShortlistSize.
func WithShortlistSize(n int) Option {
	return func(r *Runner) error {
		if n < 1 {
			return ErrInvalidShortlistSize
		}
		r.shortlist = n
		return nil
	}
}

// WithMutation applies accepted picks through applier, moving them to target
// and labeling them with label when it is not empty.
func WithMutation(applier Applier, target, label string, dryRun bool) Option {
	return func(r *Runner) error {
		r.applier = applier
		r.target = target
		r.label = label
		r.dryRun = dryRun
		return nil
	}
}

// WithDecisionLog persists decision rows under sessionID as each query
// completes.
func WithDecisionLog(repo storage.DecisionRepository, sessionID string) Option {
	return func(r *Runner) error {
		if repo != nil && sessionID == "" {
			return ErrSessionIDRequired
		}
		r.decisions = repo
		r.sessionID = sessionID
		return nil
	}
}

// WithClock overrides the row timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) error {
		if now != nil {
			r.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner.
func NewRunner(ranker Ranker, selector Selector, opts ...Option) (*Runner, error) {
	if ranker == nil {
		return nil, ErrRankerRequired
	}
	if selector == nil {
		return nil, ErrSelectorRequired
	}
	r := &Runner{
		ranker:    ranker,
		selector:  selector,
		shortlist: DefaultShortlistSize,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "pipeline")
	return r, nil
}

// Run processes queries in order. It stops early, without error, when the
// selector reports a termination. Mutation failures are recorded in the
// report and do not stop the run. The partial report is returned alongside
// any error.
func (r *Runner) Run(ctx context.Context, queries []string) (*Report, error) {
	report := &Report{SessionID: r.sessionID}
	if r.ranker.PoolSize() == 0 {
		return report, core.ErrEmptyPool
	}

	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.logger.Debug("processing query", "index", i, "query", q)

		shortlist, err := r.ranker.Rank(ctx, q, r.shortlist)
		if err != nil {
			return report, err
		}

		var sel core.Selection
		if len(shortlist) == 0 {
			sel = core.Selection{Query: q, Kind: core.KindSkipped}
		} else {
			sel, err = r.selector.Select(ctx, q, shortlist)
			if err != nil {
				return report, err
			}
		}
		if sel.Kind == core.KindTerminated {
			r.logger.Info("run terminated", "query", q, "processed", i)
			report.Terminated = true
			break
		}
		report.Selections = append(report.Selections, sel)

		reason := reasonNoSelection
		if len(shortlist) == 0 {
			reason = reasonNoCandidates
		}
		rows := r.rows(sel, reason)

		if len(sel.Picks) > 0 && r.applier != nil {
			outcome, err := r.apply(ctx, sel)
			if err != nil {
				return report, err
			}
			report.Mutations = append(report.Mutations, outcome)
			if outcome.Err != nil {
				for _, row := range rows {
					row.Reason = "mutation failed: " + outcome.Err.Error()
				}
			}
		}

		if r.decisions != nil {
			saved, err := r.decisions.AppendDecisions(ctx, rows...)
			if err != nil {
				return report, err
			}
			rows = saved
		}
		report.Rows = append(report.Rows, rows...)
		if len(sel.Picks) > 0 {
			report.Accepted += len(sel.Picks)
		} else {
			report.Skipped++
		}
	}

	r.logger.Info("run finished", "accepted", report.Accepted, "skipped", report.Skipped,
		"terminated", report.Terminated, "mutation_failures", len(report.Failed()))
	return report, nil
}

func (r *Runner) rows(sel core.Selection, skipReason string) []*core.DecisionRow {
	at := r.now().UTC()
	if len(sel.Picks) == 0 {
		return []*core.DecisionRow{{
			SessionID: r.sessionID,
			Query:     sel.Query,
			Decision:  core.DecisionSkipped,
			Reason:    skipReason,
			CreatedAt: at,
		}}
	}
	rows := make([]*core.DecisionRow, len(sel.Picks))
	for i, p := range sel.Picks {
		rows[i] = &core.DecisionRow{
			SessionID:   r.sessionID,
			Query:       sel.Query,
			Decision:    core.DecisionAccepted,
			Source:      p.Source.String(),
			CandidateID: p.Candidate.Candidate.ID,
			Combined:    p.Candidate.Combined,
			Lexical:     p.Candidate.Lexical,
			Semantic:    p.Candidate.Semantic,
			CreatedAt:   at,
		}
	}
	return rows
}

// apply returns an error only for cancellation; store failures land in the
// outcome.
func (r *Runner) apply(ctx context.Context, sel core.Selection) (MutationOutcome, error) {
	req := core.NewMutationRequest(sel.IDs(), r.target, r.label, r.dryRun)
	res, err := r.applier.Apply(ctx, req)
	outcome := MutationOutcome{Query: sel.Query, Request: req, Result: res, Err: err}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return outcome, err
		}
		r.logger.Error("mutation failed", "query", sel.Query, "notes", req.IDs, "err", err)
	}
	return outcome, nil
}
