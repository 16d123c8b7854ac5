package storage

import (
	"context"

	"github.com/poiesic/greenlight/core"
)

// VectorSearcher is the narrow vector-search capability the retrieval
// pipeline consumes. Implementations must be thread-safe and must
// tolerate an empty result set.
type VectorSearcher interface {
	// Search returns the topK stored documents most similar to the given
	// vector, as candidate hits ordered by similarity score (highest first).
	// An empty namespace matches every namespace.
	Search(ctx context.Context, vector []float32, topK int, namespace string) ([]*core.CandidateDoc, error)
}

// GraphRepository provides lookups into the industry knowledge graph.
// Enrichment consumes only GetEntity; the write operations exist for
// ingestion and test fixtures.
type GraphRepository interface {
	// GetEntity retrieves a single graph entity by its stable key.
	// Returns ErrNotFound if the entity doesn't exist.
	GetEntity(ctx context.Context, key string) (*core.EnrichedEntity, error)

	// PutEntities inserts or replaces one or more graph entities.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	// Returns the entities with timestamps populated.
	PutEntities(ctx context.Context, entities ...*core.EnrichedEntity) ([]*core.EnrichedEntity, error)

	// DeleteEntities removes graph entities by their keys.
	// Returns ErrNotFound if any entity doesn't exist.
	DeleteEntities(ctx context.Context, keys ...string) error

	// Close closes the repository and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing evidence documents.
type DocumentRepository interface {
	VectorSearcher

	// AddDocuments adds one or more documents to storage.
	// For documents with Id=0, derives a content-based ID from the
	// namespace and text, so identical content is stored once.
	// Sets InsertedAt timestamp if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}
