package query

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/ai/mock"
	"github.com/poiesic/greenlight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHyDEGenerator_UsesCompleter(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
		return "Hypothetical: buyers include streamer drama heads.", nil
	}

	g, err := NewHyDEGenerator(completer)
	require.NoError(t, err)

	out := g.Generate(context.Background(), "who is buying crime drama", core.IntentTrend)
	assert.Equal(t, "Hypothetical: buyers include streamer drama heads.", out)
}

func TestHyDEGenerator_CachesByNormalizedQuery(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
		return "cached answer", nil
	}

	g, err := NewHyDEGenerator(completer)
	require.NoError(t, err)

	ctx := context.Background()
	g.Generate(ctx, "Who is buying crime drama?", core.IntentTrend)
	g.Generate(ctx, "  who is buying crime drama?  ", core.IntentTrend)
	g.Generate(ctx, "WHO IS BUYING CRIME DRAMA?", core.IntentTrend)

	assert.Equal(t, 1, completer.CallCount())
}

func TestHyDEGenerator_DegradesToTemplateOnFailure(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
		return "", errors.New("model unavailable")
	}

	g, err := NewHyDEGenerator(completer)
	require.NoError(t, err)

	out := g.Generate(context.Background(), "Who should I pitch a Korean crime thriller to?", core.IntentRouting)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "buyers")
}

func TestHyDEGenerator_NilCompleterTakesTemplatePath(t *testing.T) {
	g, err := NewHyDEGenerator(nil)
	require.NoError(t, err)

	ctx := context.Background()

	routing := g.Generate(ctx, "who should i pitch this to", core.IntentRouting)
	trend := g.Generate(ctx, "what are the current mandates", core.IntentTrend)
	general := g.Generate(ctx, "something else entirely", core.IntentGeneral)

	assert.NotEmpty(t, routing)
	assert.NotEmpty(t, trend)
	assert.NotEqual(t, routing, trend)
	assert.Contains(t, general, "something else entirely")
}

func TestHyDEGenerator_FailuresAreNotCached(t *testing.T) {
	calls := 0
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "recovered answer", nil
	}

	g, err := NewHyDEGenerator(completer)
	require.NoError(t, err)

	ctx := context.Background()
	first := g.Generate(ctx, "what is the market for docs", core.IntentTrend)
	second := g.Generate(ctx, "what is the market for docs", core.IntentTrend)

	assert.NotEqual(t, first, second)
	assert.Equal(t, "recovered answer", second)
}

func TestHyDEGenerator_InvalidCapacity(t *testing.T) {
	_, err := NewHyDEGenerator(nil, WithHyDECacheCapacity(0))
	assert.True(t, errors.Is(err, ErrInvalidCacheCapacity))
}
