package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/greenlight/ai/mock"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_IngestAndEmbed(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	p, err := NewPipeline(docRepo, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	err = p.Ingest(ctx, "trades", []string{
		"Acme Studios picks up Korean crime thriller.",
		"Jane Doe named head of drama.",
	}, &IngestOptions{Metadata: core.DocMetadata{Source: "trades"}})
	require.NoError(t, err)

	// Embedding runs async; poll until the vectors land
	id := core.IDFromContent("trades\x00Acme Studios picks up Korean crime thriller.")
	require.Eventually(t, func() bool {
		doc, err := docRepo.GetDocument(ctx, id)
		return err == nil && len(doc.Vector) > 0
	}, 3*time.Second, 20*time.Millisecond)

	doc, err := docRepo.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "trades", doc.Metadata.Source)

	// Vector is unit-normalized
	var sumSquares float32
	for _, v := range doc.Vector {
		sumSquares += v * v
	}
	assert.InDelta(t, 1.0, sumSquares, 0.01)
}

func TestPipeline_EmptyBatch(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	p, err := NewPipeline(docRepo, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer p.Release()

	assert.NoError(t, p.Ingest(context.Background(), "trades", nil, nil))
}

func TestNewPipeline_Validation(t *testing.T) {
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, mock.NewMockEmbedder())
	assert.True(t, errors.Is(err, ErrDocumentRepositoryRequired))

	_, err = NewPipeline(docRepo, nil)
	assert.True(t, errors.Is(err, ErrEmbedderRequired))
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		wantErr := errors.New("persistent")
		err := RetryWithBackoff(ctx, func() error { return wantErr }, 2, time.Millisecond)
		assert.Equal(t, wantErr, err)
	})

	t.Run("rejects zero attempts", func(t *testing.T) {
		err := RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.True(t, errors.Is(err, ErrInvalidMaxAttempts))
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(canceled, func() error { return errors.New("x") }, 3, time.Millisecond)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, normalized[0], 1e-6)
	assert.InDelta(t, 0.8, normalized[1], 1e-6)

	zero := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}
