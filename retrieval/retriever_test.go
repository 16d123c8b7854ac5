package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/poiesic/greenlight/ai/mock"
	"github.com/poiesic/greenlight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearcher is a scriptable storage.VectorSearcher.
type stubSearcher struct {
	searchFunc func(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error)
	calls      atomic.Int64
}

func (s *stubSearcher) Search(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error) {
	s.calls.Add(1)
	if s.searchFunc != nil {
		return s.searchFunc(ctx, vector, topK, namespace)
	}
	return nil, nil
}

func variants(texts ...string) []core.QueryVariant {
	out := make([]core.QueryVariant, len(texts))
	for i, text := range texts {
		out[i] = core.QueryVariant{Text: text, Technique: core.TechniqueSynonym}
	}
	return out
}

func TestRetriever_FusesAcrossVariants(t *testing.T) {
	var seq atomic.Int64
	searcher := &stubSearcher{
		searchFunc: func(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error) {
			// Every variant sees the shared doc plus one unique doc
			return []*core.CandidateDoc{
				{ID: "shared", Score: 0.5, Text: "shared doc"},
				{ID: fmt.Sprintf("unique-%d", seq.Add(1)), Score: 0.1},
			}, nil
		},
	}

	r, err := NewRetriever(searcher, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer r.Release()

	docs, err := r.Retrieve(context.Background(), variants("crime thriller", "noir thriller", "crime suspense"), 5, "trades")
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	seen := map[string]bool{}
	for _, doc := range docs {
		require.False(t, seen[doc.ID], "duplicate id %s", doc.ID)
		seen[doc.ID] = true
	}
	assert.True(t, seen["shared"])
	assert.EqualValues(t, 3, searcher.calls.Load())
}

func TestRetriever_WithDiversityBoundsResultCount(t *testing.T) {
	var seq atomic.Int64
	searcher := &stubSearcher{
		searchFunc: func(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error) {
			n := seq.Add(1)
			return []*core.CandidateDoc{
				{ID: fmt.Sprintf("doc-%d-a", n), Score: 0.9},
				{ID: fmt.Sprintf("doc-%d-b", n), Score: 0.5},
				{ID: fmt.Sprintf("doc-%d-c", n), Score: 0.1},
			}, nil
		},
	}

	r, err := NewRetriever(searcher, mock.NewMockEmbedder(), WithDiversity())
	require.NoError(t, err)
	defer r.Release()

	const topK = 4
	docs, err := r.Retrieve(context.Background(), variants("first", "second", "third"), topK, "")
	require.NoError(t, err)
	require.Len(t, docs, topK, "fused set bounded to top-k")
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score, "score order kept")
	}
}

func TestRetriever_NoVariants(t *testing.T) {
	r, err := NewRetriever(&stubSearcher{}, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer r.Release()

	_, err = r.Retrieve(context.Background(), nil, 5, "")
	assert.True(t, errors.Is(err, ErrNoVariants))
}

func TestRetriever_PartialSearchFailureDegrades(t *testing.T) {
	var n atomic.Int64
	searcher := &stubSearcher{
		searchFunc: func(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error) {
			if n.Add(1) == 1 {
				return nil, errors.New("backend hiccup")
			}
			return []*core.CandidateDoc{{ID: "ok", Score: 0.5}}, nil
		},
	}

	r, err := NewRetriever(searcher, mock.NewMockEmbedder(), WithPoolSize(1))
	require.NoError(t, err)
	defer r.Release()

	docs, err := r.Retrieve(context.Background(), variants("first", "second"), 5, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ok", docs[0].ID)
}

func TestRetriever_AllSearchesFailed(t *testing.T) {
	searcher := &stubSearcher{
		searchFunc: func(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error) {
			return nil, errors.New("backend down")
		},
	}

	r, err := NewRetriever(searcher, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer r.Release()

	_, err = r.Retrieve(context.Background(), variants("only"), 5, "")
	assert.True(t, errors.Is(err, ErrAllVariantsFailed))
}

func TestRetriever_EmbeddingCacheReducesCalls(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var embedCalls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedCalls.Add(1)
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0.1, 0.2}
		}
		return out, nil
	}

	r, err := NewRetriever(&stubSearcher{}, embedder)
	require.NoError(t, err)
	defer r.Release()

	ctx := context.Background()
	_, err = r.Retrieve(ctx, variants("repeat me"), 5, "")
	require.NoError(t, err)
	_, err = r.Retrieve(ctx, variants("repeat me"), 5, "")
	require.NoError(t, err)

	assert.EqualValues(t, 1, embedCalls.Load())
}

func TestRetriever_EmptyResultsTolerated(t *testing.T) {
	r, err := NewRetriever(&stubSearcher{}, mock.NewMockEmbedder())
	require.NoError(t, err)
	defer r.Release()

	docs, err := r.Retrieve(context.Background(), variants("anything"), 5, "")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
