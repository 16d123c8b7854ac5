package retrieval

import "errors"

var (
	// ErrSearcherRequired indicates a nil vector searcher.
	ErrSearcherRequired = errors.New("vector searcher is required")

	// ErrEmbedderRequired indicates a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrNoVariants indicates retrieval was invoked with nothing to search.
	ErrNoVariants = errors.New("no query variants to retrieve")

	// ErrAllVariantsFailed indicates every per-variant search failed.
	ErrAllVariantsFailed = errors.New("all retrieval variants failed")
)
