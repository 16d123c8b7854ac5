// Package retrieval fans a set of query variants out against the
// vector store and fuses the per-variant hits into one deduplicated
// candidate set, keeping the maximum score for each document.
package retrieval
