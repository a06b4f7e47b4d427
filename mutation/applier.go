package mutation

import (
	"context"
	"log/slog"

	"github.com/poiesic/lomatch/core"
)

// Sink is the note store side of a mutation. Notes own one or more cards;
// moving and suspension act on cards while labels act on notes.
type Sink interface {
	// FindCards returns the card IDs belonging to the given notes.
	FindCards(ctx context.Context, noteIDs []int64) ([]int64, error)

	// MoveCards moves cards into deck.
	MoveCards(ctx context.Context, cardIDs []int64, deck string) error

	// AddLabel adds label to notes.
	AddLabel(ctx context.Context, noteIDs []int64, label string) error

	// SetSuspended suspends or unsuspends cards.
	SetSuspended(ctx context.Context, cardIDs []int64, suspended bool) error
}

// Applier turns mutation requests into sink calls.
type Applier struct {
	sink      Sink
	unsuspend bool
	logger    *slog.Logger
}

// Option configures an Applier.
type Option func(*Applier) error

// WithUnsuspend also unsuspends the cards of every moved note.
func WithUnsuspend(enabled bool) Option {
	return func(a *Applier) error {
		a.unsuspend = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Applier) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewApplier creates an applier over sink.
func NewApplier(sink Sink, opts ...Option) (*Applier, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	a := &Applier{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "mutation")
	return a, nil
}

// Apply executes req. IDs are deduplicated and sorted first. In dry-run mode
// the sink is never called and the result reports what would have changed.
// Sink failures are returned as *core.MutationError.
func (a *Applier) Apply(ctx context.Context, req core.MutationRequest) (core.MutationResult, error) {
	req = core.NewMutationRequest(req.IDs, req.Target, req.Label, req.DryRun)
	result := core.MutationResult{DryRun: req.DryRun}
	n := len(req.IDs)
	if n == 0 {
		return result, nil
	}

	if req.DryRun {
		result.Moved = n
		if req.Label != "" {
			result.Labeled = n
		}
		a.logger.Info("dry run", "notes", n, "target", req.Target, "label", req.Label)
		return result, nil
	}

	if req.Target == "" {
		return result, ErrTargetRequired
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	cards, err := a.sink.FindCards(ctx, req.IDs)
	if err != nil {
		return result, &core.MutationError{Op: "findCards", IDs: req.IDs, Err: err}
	}

	if len(cards) > 0 {
		if a.unsuspend {
			if err := a.sink.SetSuspended(ctx, cards, false); err != nil {
				return result, &core.MutationError{Op: "setSuspended", IDs: req.IDs, Err: err}
			}
		}
		if err := a.sink.MoveCards(ctx, cards, req.Target); err != nil {
			return result, &core.MutationError{Op: "changeDeck", IDs: req.IDs, Err: err}
		}
	} else {
		a.logger.Warn("no cards found for notes", "notes", req.IDs)
	}
	result.Moved = n

	if req.Label != "" {
		if err := a.sink.AddLabel(ctx, req.IDs, req.Label); err != nil {
			return result, &core.MutationError{Op: "addTags", IDs: req.IDs, Err: err}
		}
		result.Labeled = n
	}

	a.logger.Info("applied mutation", "notes", n, "cards", len(cards), "target", req.Target, "label", req.Label)
	return result, nil
}
