package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/lomatch/core"
)

// ErrProviderClosed is returned by a Lazy used after Close.
var ErrProviderClosed = errors.New("embedding provider closed")

// ProviderFactory constructs a Provider.
type ProviderFactory func() (Provider, error)

// Lazy is an Embedder that constructs its Provider on first use.
// Construction runs at most once; a failed construction is remembered and
// every later call reports it wrapped in core.ErrBackendUnavailable.
type Lazy struct {
	factory ProviderFactory
	logger  *slog.Logger

	once     sync.Once
	mu       sync.Mutex
	provider Provider
	initErr  error
	closed   bool
}

// LazyOption configures a Lazy.
type LazyOption func(*Lazy)

// WithLazyLogger sets the logger used to report construction.
func WithLazyLogger(logger *slog.Logger) LazyOption {
	return func(l *Lazy) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLazy returns a Lazy that will call factory on first use.
func NewLazy(factory ProviderFactory, opts ...LazyOption) *Lazy {
	l := &Lazy{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "lazy-embedder")
	return l
}

func (l *Lazy) init() {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		l.initErr = ErrProviderClosed
		return
	}
	if l.factory == nil {
		l.initErr = fmt.Errorf("%w: no provider configured", core.ErrBackendUnavailable)
		return
	}

	l.logger.Debug("constructing embedding provider")
	p, err := l.factory()
	if err != nil {
		l.logger.Warn("embedding provider unavailable", "err", err)
		l.initErr = fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		p.Close()
		l.initErr = ErrProviderClosed
		return
	}
	l.provider = p
}

// Embedder returns the underlying embedder, constructing the provider if needed.
func (l *Lazy) Embedder() (Embedder, error) {
	l.once.Do(l.init)
	if l.initErr != nil {
		return nil, l.initErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrProviderClosed
	}
	return l.provider.Embedder(), nil
}

// EmbedText implements Embedder.
func (l *Lazy) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e, err := l.Embedder()
	if err != nil {
		return nil, err
	}
	return e.EmbedText(ctx, text)
}

// EmbedTexts implements Embedder.
func (l *Lazy) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.Embedder()
	if err != nil {
		return nil, err
	}
	return e.EmbedTexts(ctx, texts)
}

// Close releases the provider if it was constructed. It is safe to call
// more than once and before first use.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.provider == nil {
		return nil
	}
	l.logger.Debug("closing embedding provider")
	return l.provider.Close()
}
