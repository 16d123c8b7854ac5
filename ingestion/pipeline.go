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

package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/storage"
)

// Retry parameters for the async embedding step.
const (
	embedMaxAttempts = 3
	embedBaseDelay   = 500 * time.Millisecond
)

// Pipeline orchestrates the ingestion and embedding of evidence
// documents. Documents land in storage immediately; embeddings are
// generated asynchronously on a worker pool.
type Pipeline struct {
	docRepository storage.DocumentRepository
	embedder      ai.Embedder
	embeddingPool *ants.Pool
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(docRepository storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
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

	p := &Pipeline{
		docRepository: docRepository,
		embedder:      embedder,
		embeddingPool: pool,
		logger:        slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata  core.DocMetadata // applied to every document in the batch
	Timestamp time.Time        // uses current time if zero
}

// Ingest adds texts as evidence documents in the namespace and embeds
// them asynchronously. Errors during async embedding are logged but do
// not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, namespace string, texts []string, opts *IngestOptions) error {
	if opts == nil {
		opts = &IngestOptions{}
	}

	docs := make([]*core.Document, len(texts))
	for i, text := range texts {
		timestamp := opts.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		docs[i] = &core.Document{
			Text:       text,
			Namespace:  namespace,
			Metadata:   opts.Metadata,
			InsertedAt: timestamp,
		}
	}

	added, err := p.docRepository.AddDocuments(ctx, docs...)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}

	ids := make([]core.ID, len(added))
	for i, doc := range added {
		ids[i] = doc.Id
	}

	p.embeddingPool.Submit(func() {
		if err := p.embedDocuments(context.Background(), ids...); err != nil {
			p.logger.Error("error embedding documents", "err", err)
		}
	})

	return nil
}

// embedDocuments generates unit-normalized embeddings for the stored
// documents and writes them back, retrying transient failures.
func (p *Pipeline) embedDocuments(ctx context.Context, ids ...core.ID) error {
	p.logger.Info("embedding documents", "documents", len(ids))

	docs, err := p.docRepository.GetDocuments(ctx, ids...)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var embeddings [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, embedMaxAttempts, embedBaseDelay)
	if err != nil {
		return err
	}
	if len(embeddings) != len(docs) {
		return ErrEmbeddingCountMismatch
	}

	for i, doc := range docs {
		doc.Vector = NormalizeVector(embeddings[i])
	}

	_, err = p.docRepository.UpdateDocuments(ctx, docs...)
	return err
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
