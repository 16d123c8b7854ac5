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

// Package enrich attaches structured graph facts to ranked results.
// Enrichment is best-effort: missing keys and missing records are
// skipped and a query never fails because of it.
package enrich

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/greenlight/core"
	"github.com/poiesic/greenlight/storage"
)

// DefaultEnrichHead is how many leading results are enriched.
const DefaultEnrichHead = 5

// ErrRepositoryRequired indicates a nil graph repository.
var ErrRepositoryRequired = errors.New("graph repository is required")

// Enricher looks up graph entities for the head of a ranked list.
type Enricher struct {
	graph  storage.GraphRepository
	head   int
	logger *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher) error

// WithHead sets how many leading results are enriched.
// Values below 1 keep the default.
func WithHead(head int) Option {
	return func(e *Enricher) error {
		if head >= 1 {
			e.head = head
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEnricher creates an enricher over the graph repository.
func NewEnricher(graph storage.GraphRepository, opts ...Option) (*Enricher, error) {
	if graph == nil {
		return nil, ErrRepositoryRequired
	}
	e := &Enricher{
		graph:  graph,
		head:   DefaultEnrichHead,
		logger: slog.Default().With("component", "enricher"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Enrich attaches graph entities in place to the leading results whose
// metadata carries an entity key. Results without a key, and keys with
// no graph record, are left untouched.
func (e *Enricher) Enrich(ctx context.Context, results []*core.RankedResult) {
	head := e.head
	if head > len(results) {
		head = len(results)
	}

	for _, result := range results[:head] {
		key := result.Metadata.EntityID
		if key == "" {
			continue
		}

		entity, err := e.graph.GetEntity(ctx, key)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				e.logger.Warn("entity lookup failed", "key", key, "error", err)
			}
			continue
		}
		result.Entity = entity
	}
}
