package batching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/greenlight/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_FullBatchSingleInvocation(t *testing.T) {
	const batchSize = 4

	var invocations atomic.Int64
	var batchLens sync.Map

	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		n := invocations.Add(1)
		batchLens.Store(n, len(items))
		out := make([]int, len(items))
		for i, item := range items {
			out[i] = item * 10
		}
		return out, nil
	}, WithBatchSize[int, int](batchSize), WithMaxWait[int, int](500*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	results := make([]int, batchSize)
	for i := 0; i < batchSize; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Process(context.Background(), i, 2*time.Second)
			assert.NoError(t, err)
			results[i] = result
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, invocations.Load(), "one invocation for a full batch")
	length, _ := batchLens.Load(int64(1))
	assert.Equal(t, batchSize, length)
	for i := 0; i < batchSize; i++ {
		assert.Equal(t, i*10, results[i], "each caller got its own result")
	}
}

func TestScheduler_SingleItemFiresAfterMaxWait(t *testing.T) {
	const maxWait = 100 * time.Millisecond

	var batchLen atomic.Int64
	s, err := NewScheduler(func(ctx context.Context, items []string) ([]string, error) {
		batchLen.Store(int64(len(items)))
		return items, nil
	}, WithBatchSize[string, string](16), WithMaxWait[string, string](maxWait))
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	result, err := s.Process(context.Background(), "lonely", 2*time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "lonely", result)
	assert.EqualValues(t, 1, batchLen.Load())
	assert.GreaterOrEqual(t, elapsed, maxWait-20*time.Millisecond, "batch waits for the window before dispatching")
}

func TestScheduler_ErrorFansToAllCallers(t *testing.T) {
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		return nil, errors.New("model exploded")
	}, WithBatchSize[int, int](2), WithMaxWait[int, int](50*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Process(context.Background(), i, time.Second)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestScheduler_ResultCountMismatch(t *testing.T) {
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		return []int{}, nil
	}, WithBatchSize[int, int](1))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Process(context.Background(), 7, time.Second)
	assert.True(t, errors.Is(err, ErrResultCountMismatch))
}

func TestScheduler_ProcessTimeout(t *testing.T) {
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		time.Sleep(500 * time.Millisecond)
		return items, nil
	}, WithBatchSize[int, int](1))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Process(context.Background(), 1, 50*time.Millisecond)
	assert.True(t, errors.Is(err, ErrProcessTimeout))
}

func TestScheduler_ClosedRejectsSubmissions(t *testing.T) {
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		return items, nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = s.Process(context.Background(), 1, time.Second)
	assert.True(t, errors.Is(err, ErrSchedulerClosed))

	// Close is idempotent
	assert.NoError(t, s.Close())
}

func TestScheduler_CloseDrainsPending(t *testing.T) {
	var processed atomic.Int64
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		processed.Add(int64(len(items)))
		return items, nil
	}, WithBatchSize[int, int](8), WithMaxWait[int, int](200*time.Millisecond))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Process(context.Background(), i, 2*time.Second)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Close())
	wg.Wait()

	assert.EqualValues(t, 3, processed.Load())
}

func TestScheduler_Stats(t *testing.T) {
	s, err := NewScheduler(func(ctx context.Context, items []int) ([]int, error) {
		return items, nil
	}, WithBatchSize[int, int](1))
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 3; i++ {
		_, err := s.Process(context.Background(), i, time.Second)
		require.NoError(t, err)
	}

	stats := s.Stats()
	assert.EqualValues(t, 3, stats.BatchesProcessed)
	assert.EqualValues(t, 3, stats.ItemsProcessed)
	assert.Equal(t, 1, stats.LargestBatch)
}

func TestNewScheduler_NilBatchFunc(t *testing.T) {
	_, err := NewScheduler[int, int](nil)
	assert.True(t, errors.Is(err, ErrBatchFuncRequired))
}

func TestEmbedBatcher_BatchesSingleTextCalls(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var batchCalls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls.Add(1)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(len(texts[i]))}
		}
		return out, nil
	}

	b, err := NewEmbedBatcher(embedder, nil,
		WithBatchSize[string, []float32](3),
		WithMaxWait[string, []float32](300*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	var wg sync.WaitGroup
	vectors := make([][]float32, 3)
	texts := []string{"a", "bb", "ccc"}
	for i := range texts {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			vector, embedErr := b.EmbedText(context.Background(), texts[i])
			assert.NoError(t, embedErr)
			vectors[i] = vector
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, batchCalls.Load(), "three callers, one model call")
	for i, text := range texts {
		require.Len(t, vectors[i], 1)
		assert.Equal(t, float32(len(text)), vectors[i][0])
	}

	stats := b.Stats()
	assert.EqualValues(t, 3, stats.ItemsProcessed)
}

func TestEmbedBatcher_EmbedTextsGoesThroughScheduler(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var batchCalls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls.Add(1)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{float32(len(texts[i]))}
		}
		return out, nil
	}

	b, err := NewEmbedBatcher(embedder, nil,
		WithBatchSize[string, []float32](3),
		WithMaxWait[string, []float32](300*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	vectors, err := b.EmbedTexts(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.EqualValues(t, 1, batchCalls.Load(), "one model call for the whole submission")
	for i, text := range []string{"a", "bb", "ccc"} {
		require.Len(t, vectors[i], 1)
		assert.Equal(t, float32(len(text)), vectors[i][0], "results keep input order")
	}

	stats := b.Stats()
	assert.GreaterOrEqual(t, stats.BatchesProcessed, uint64(1))
	assert.EqualValues(t, 3, stats.ItemsProcessed)
}

func TestEmbedBatcher_EmbedTextsEmptyInput(t *testing.T) {
	b, err := NewEmbedBatcher(mock.NewMockEmbedder(), nil)
	require.NoError(t, err)
	defer b.Close()

	vectors, err := b.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, b.Stats().BatchesProcessed)
}

func TestNewEmbedBatcher_NilEmbedder(t *testing.T) {
	_, err := NewEmbedBatcher(nil, nil)
	assert.True(t, errors.Is(err, ErrEmbedderRequired))
}
