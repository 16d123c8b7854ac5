// Package ingestion loads evidence documents into storage and embeds
// them asynchronously.
//
// The Pipeline type manages the ingestion workflow for documents:
//   - Adding documents to storage with content-addressed ids
//   - Generating and normalizing embeddings asynchronously
//
// Embedding is performed concurrently using a worker pool. Errors
// during async processing are logged but do not fail the ingestion
// operation.
package ingestion
