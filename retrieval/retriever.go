// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/cache"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/storage"
)

// Defaults for the retriever.
const (
	DefaultSearchTimeout      = 10 * time.Second
	DefaultEmbedCacheCapacity = 256
)

// Retriever issues one vector search per query variant and fuses the
// results. Per-variant failures are logged and skipped; retrieval only
// fails when no variant produces a usable result set.
type Retriever struct {
	searcher      storage.VectorSearcher
	embedder      ai.Embedder
	pool          *ants.Pool
	embedCache    *cache.LRU[string, []float32]
	searchTimeout time.Duration
	diversify     bool
	logger        *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithPoolSize sets the worker pool size for concurrent searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Retriever) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithSearchTimeout bounds each per-variant search call.
func WithSearchTimeout(timeout time.Duration) Option {
	return func(r *Retriever) error {
		if timeout > 0 {
			r.searchTimeout = timeout
		}
		return nil
	}
}

// WithEmbedCacheCapacity sets the embedding cache capacity.
func WithEmbedCacheCapacity(capacity int) Option {
	return func(r *Retriever) error {
		if capacity < 1 {
			capacity = 1
		}
		r.embedCache = cache.NewLRU[string, []float32](capacity)
		return nil
	}
}

// WithDiversity bounds the fused set to top-k entries via Diversify.
// Off by default; without it Retrieve returns every fused candidate.
func WithDiversity() Option {
	return func(r *Retriever) error {
		r.diversify = true
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the given searcher and embedder.
func NewRetriever(searcher storage.VectorSearcher, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		searcher:      searcher,
		embedder:      embedder,
		pool:          pool,
		embedCache:    cache.NewLRU[string, []float32](DefaultEmbedCacheCapacity),
		searchTimeout: DefaultSearchTimeout,
		logger:        slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// Retrieve embeds each variant, searches the vector store once per
// variant with top-k breadth, and returns the fused candidate set.
// The returned set has no duplicate ids; each id carries its maximum
// observed score.
func (r *Retriever) Retrieve(ctx context.Context, variants []core.QueryVariant, topK int, namespace string) ([]*core.CandidateDoc, error) {
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}

	vectors, err := r.embedVariants(ctx, variants)
	if err != nil {
		return nil, err
	}

	batches := make([][]*core.CandidateDoc, len(variants))
	errs := make([]error, len(variants))

	var wg sync.WaitGroup
	for i := range variants {
		if vectors[i] == nil {
			continue
		}
		i := i
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			searchCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
			defer cancel()
			batches[i], errs[i] = r.searcher.Search(searchCtx, vectors[i], topK, namespace)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	succeeded := 0
	for i, searchErr := range errs {
		if vectors[i] == nil {
			continue
		}
		if searchErr != nil {
			r.logger.Warn("variant search failed",
				"technique", variants[i].Technique, "error", searchErr)
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return nil, ErrAllVariantsFailed
	}

	fused := FuseByMaxScore(batches...)
	if r.diversify {
		fused = Diversify(fused, topK)
	}
	return fused, nil
}

// embedVariants returns one vector per variant, consulting the cache
// first and batching the misses into a single embedding call. A nil
// vector marks a variant that could not be embedded.
func (r *Retriever) embedVariants(ctx context.Context, variants []core.QueryVariant) ([][]float32, error) {
	vectors := make([][]float32, len(variants))

	missTexts := make([]string, 0, len(variants))
	missIdx := make([]int, 0, len(variants))
	for i, variant := range variants {
		if cached, ok := r.embedCache.Get(variant.Text); ok {
			vectors[i] = cached
			continue
		}
		missTexts = append(missTexts, variant.Text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := r.embedder.EmbedTexts(ctx, missTexts)
	if err != nil {
		// If nothing is cached either, retrieval has no vector to
		// search with and must report the failure.
		cachedAny := false
		for _, v := range vectors {
			if v != nil {
				cachedAny = true
				break
			}
		}
		if !cachedAny {
			return nil, err
		}
		r.logger.Warn("embedding failed for some variants, searching cached ones only", "error", err)
		return vectors, nil
	}

	for j, idx := range missIdx {
		if j >= len(embedded) {
			break
		}
		vectors[idx] = embedded[j]
		r.embedCache.Put(variants[idx].Text, embedded[j])
	}
	return vectors, nil
}

// Release frees the worker pool. The retriever must not be used after.
func (r *Retriever) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}
