package rerank

import (
	"context"
	"log/slog"
)

// Cascade chains rerank backends. Each backend is tried in order; if
// all fail, identity-order fallback results are returned. For
// non-empty input the cascade never returns an empty result and never
// returns an error.
type Cascade struct {
	backends []Reranker
	logger   *slog.Logger
}

// NewCascade creates a cascade over the given backends. A cascade with
// no backends always takes the fallback path.
func NewCascade(logger *slog.Logger, backends ...Reranker) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		backends: backends,
		logger:   logger.With("component", "rerank-cascade"),
	}
}

var _ Reranker = (*Cascade)(nil)

// Rerank tries each backend and degrades to identity ordering with
// decreasing scores when none succeeds.
func (c *Cascade) Rerank(ctx context.Context, query string, texts []string, topN int) ([]Result, error) {
	if len(texts) == 0 {
		return []Result{}, nil
	}

	for _, backend := range c.backends {
		results, err := backend.Rerank(ctx, query, texts, topN)
		if err != nil {
			c.logger.Warn("rerank backend failed, trying next", "error", err)
			continue
		}
		if len(results) == 0 {
			c.logger.Warn("rerank backend returned no results, trying next")
			continue
		}
		return results, nil
	}

	c.logger.Debug("all rerank backends unavailable, using identity order")
	return FallbackResults(texts, topN), nil
}
