package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lomatch/ai"
	"github.com/poiesic/lomatch/core"
	"github.com/poiesic/lomatch/storage"
)

const (
	defaultBatchSize      = 64
	defaultMaxRetries     = 3
	defaultRetryDelay     = 500 * time.Millisecond
	defaultReportInterval = 256
)

// Index holds unit-length embeddings for a candidate pool and answers
// nearest-neighbor queries by exhaustive dot product.
//
// An Index without an embedder, or whose last Fit failed, is inactive:
// Query returns no hits and no error, and callers rank lexically.
type Index struct {
	embedder       ai.Embedder
	cache          storage.VectorCache
	model          string
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryDelay     time.Duration
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger

	mu      sync.RWMutex
	vectors [][]float32
	active  bool
}

// Option configures an Index.
type Option func(*Index) error

// WithPoolSize sets how many batches are encoded concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Index) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts are sent per embedding call.
func WithBatchSize(size int) Option {
	return func(ix *Index) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		ix.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(ix *Index) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		ix.maxRetries = maxAttempts
		ix.retryDelay = baseDelay
		return nil
	}
}

// WithCache stores and reuses candidate vectors. model namespaces the
// cache keys and should name the embedding model in use.
func WithCache(cache storage.VectorCache, model string) Option {
	return func(ix *Index) error {
		ix.cache = cache
		ix.model = model
		return nil
	}
}

// WithProgress reports encoding progress to w every interval texts.
func WithProgress(w io.Writer, interval int) Option {
	return func(ix *Index) error {
		ix.progress = w
		if interval > 0 {
			ix.reportInterval = interval
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// New creates an Index. embedder may be nil, which yields a permanently
// inactive index.
func New(embedder ai.Embedder, opts ...Option) (*Index, error) {
	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		embedder:       embedder,
		pool:           pool,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryDelay:     defaultRetryDelay,
		reportInterval: defaultReportInterval,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}
	ix.logger = ix.logger.With("component", "index")
	return ix, nil
}

// Release frees the worker pool.
func (ix *Index) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Active reports whether Query can return hits.
func (ix *Index) Active() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.active
}

// Len returns the number of indexed candidates.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Fit encodes every candidate's text, replacing any previous state.
// On an embedding failure the index is left inactive and the error wraps
// core.ErrBackendUnavailable.
func (ix *Index) Fit(ctx context.Context, candidates []core.Candidate) error {
	ix.mu.Lock()
	ix.vectors = nil
	ix.active = false
	ix.mu.Unlock()

	if ix.embedder == nil {
		ix.logger.Debug("no embedder configured, index inactive")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = candidates[i].Text
	}

	start := time.Now()
	vectors, err := ix.encodeAll(ctx, texts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		ix.logger.Warn("embedding failed, index inactive", "err", err)
		return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}

	ix.mu.Lock()
	ix.vectors = vectors
	ix.active = true
	ix.mu.Unlock()

	ix.logger.Info("index fit", "candidates", len(vectors), "elapsed", time.Since(start))
	return nil
}

// encodeAll fans batches out over the worker pool and gathers the results
// in input order.
func (ix *Index) encodeAll(ctx context.Context, texts []string) ([][]float32, error) {
	encoder := &batchEncoder{
		embedder:       ix.embedder,
		cache:          ix.cache,
		model:          ix.model,
		maxRetries:     ix.maxRetries,
		retryBaseDelay: ix.retryDelay,
		logger:         ix.logger,
	}

	var tracker *ProgressTracker
	if ix.progress != nil {
		tracker = NewProgressTracker(ix.progress, len(texts), ix.reportInterval)
		tracker.Start()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for start := 0; start < len(texts); start += ix.batchSize {
		end := min(start+ix.batchSize, len(texts))
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			batch, err := encoder.encode(ctx, texts[start:end])
			if err != nil {
				fail(err)
				return
			}
			copy(vectors[start:end], batch)
			if tracker != nil {
				tracker.Increment(end - start)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if tracker != nil {
		tracker.Finish()
	}

	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(v))
		}
	}
	return vectors, nil
}

// Query returns up to topK candidates nearest to text, highest score first.
// Equal scores keep candidate order. An inactive index returns nil, nil.
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]core.Hit, error) {
	ix.mu.RLock()
	vectors, active := ix.vectors, ix.active
	ix.mu.RUnlock()

	if !active || topK <= 0 {
		return nil, nil
	}

	raw, err := ix.embedder.EmbedText(ctx, core.Normalize(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	if len(raw) != len(vectors[0]) {
		return nil, fmt.Errorf("%w: %w: query has %d dimensions, index has %d",
			core.ErrBackendUnavailable, ErrDimensionMismatch, len(raw), len(vectors[0]))
	}
	q := NormalizeVector(raw)

	hits := make([]core.Hit, len(vectors))
	for i, v := range vectors {
		// float32 rounding can push a self-match just past 1
		hits[i] = core.Hit{Index: i, Score: min(max(Dot(q, v), -1), 1)}
	}
	slices.SortStableFunc(hits, func(a, b core.Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}
