package batching

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/greenlight/ai"
)

// DefaultEmbedTimeout bounds each single-text embedding submission.
const DefaultEmbedTimeout = 30 * time.Second

// EmbedBatcher is an ai.Embedder that funnels every text through a
// micro-batching scheduler, so many concurrent pipeline instances
// share one batched model call. Multi-text calls are split into
// per-text submissions that coalesce with whatever else is queued.
type EmbedBatcher struct {
	scheduler *Scheduler[string, []float32]
	timeout   time.Duration
}

// EmbedBatcherOption configures an EmbedBatcher.
type EmbedBatcherOption func(*EmbedBatcher)

// WithEmbedTimeout bounds each single-text submission.
func WithEmbedTimeout(timeout time.Duration) EmbedBatcherOption {
	return func(b *EmbedBatcher) {
		if timeout > 0 {
			b.timeout = timeout
		}
	}
}

// NewEmbedBatcher wraps inner with a micro-batching scheduler.
// Scheduler options tune the batch size and wait window.
func NewEmbedBatcher(inner ai.Embedder, opts []EmbedBatcherOption, schedOpts ...SchedulerOption[string, []float32]) (*EmbedBatcher, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}

	b := &EmbedBatcher{
		timeout: DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	scheduler, err := NewScheduler(func(ctx context.Context, texts []string) ([][]float32, error) {
		return inner.EmbedTexts(ctx, texts)
	}, schedOpts...)
	if err != nil {
		return nil, err
	}
	b.scheduler = scheduler
	return b, nil
}

var _ ai.Embedder = (*EmbedBatcher)(nil)

// EmbedText submits one text through the scheduler.
func (b *EmbedBatcher) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return b.scheduler.Process(ctx, text, b.timeout)
}

// EmbedTexts submits each text through the scheduler so texts from
// concurrent callers aggregate into shared batches. Results keep
// input order; the first submission error wins.
func (b *EmbedBatcher) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			vector, err := b.scheduler.Process(ctx, text, b.timeout)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			vectors[i] = vector
		}(i, text)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Stats exposes the underlying scheduler counters.
func (b *EmbedBatcher) Stats() Stats {
	return b.scheduler.Stats()
}

// Close shuts down the scheduler.
func (b *EmbedBatcher) Close() error {
	return b.scheduler.Close()
}
