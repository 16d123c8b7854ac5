package retrieval

import (
	"testing"

	"github.com/poiesic/greenlight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuseByMaxScore_KeepsMaxScore(t *testing.T) {
	a := []*core.CandidateDoc{
		{ID: "1", Score: 0.50, Text: "doc one"},
		{ID: "2", Score: 0.80, Text: "doc two"},
	}
	b := []*core.CandidateDoc{
		{ID: "1", Score: 0.90, Text: "doc one"},
		{ID: "3", Score: 0.40, Text: "doc three"},
	}

	fused := FuseByMaxScore(a, b)
	require.Len(t, fused, 3)

	byID := map[string]float32{}
	for _, doc := range fused {
		_, dup := byID[doc.ID]
		require.False(t, dup, "duplicate id %s", doc.ID)
		byID[doc.ID] = doc.Score
	}
	assert.Equal(t, float32(0.90), byID["1"])
	assert.Equal(t, float32(0.80), byID["2"])
	assert.Equal(t, float32(0.40), byID["3"])
}

func TestFuseByMaxScore_OrdersByScoreDescending(t *testing.T) {
	fused := FuseByMaxScore([]*core.CandidateDoc{
		{ID: "low", Score: 0.1},
		{ID: "high", Score: 0.9},
		{ID: "mid", Score: 0.5},
	})
	require.Len(t, fused, 3)
	assert.Equal(t, "high", fused[0].ID)
	assert.Equal(t, "mid", fused[1].ID)
	assert.Equal(t, "low", fused[2].ID)
}

func TestFuseByMaxScore_Empty(t *testing.T) {
	assert.Empty(t, FuseByMaxScore())
	assert.Empty(t, FuseByMaxScore(nil, nil))
	assert.Empty(t, FuseByMaxScore([]*core.CandidateDoc{}))
}

func TestFuseByMaxScore_TieBreaksOnID(t *testing.T) {
	fused := FuseByMaxScore([]*core.CandidateDoc{
		{ID: "b", Score: 0.5},
		{ID: "a", Score: 0.5},
	})
	require.Len(t, fused, 2)
	assert.Equal(t, "a", fused[0].ID)
	assert.Equal(t, "b", fused[1].ID)
}

func TestDiversify_TruncatesInScoreOrder(t *testing.T) {
	docs := []*core.CandidateDoc{
		{ID: "1", Score: 0.2},
		{ID: "2", Score: 0.9},
		{ID: "3", Score: 0.5},
		{ID: "4", Score: 0.7},
	}

	out := Diversify(docs, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].ID)
	assert.Equal(t, "4", out[1].ID)

	// Input order is untouched
	assert.Equal(t, "1", docs[0].ID)
}

func TestDiversify_LimitEdgeCases(t *testing.T) {
	docs := []*core.CandidateDoc{{ID: "1", Score: 0.2}}

	assert.Nil(t, Diversify(docs, 0))
	assert.Len(t, Diversify(docs, 5), 1)
}
