package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	// System is the system instruction framing the model's behavior.
	System string

	// User is the user-turn content.
	User string

	// Temperature controls sampling randomness. Zero is deterministic.
	Temperature float64

	// MaxTokens bounds the response length. Zero means the provider default.
	MaxTokens int

	// JSONMode requests a JSON-only response from providers that support it.
	JSONMode bool
}

// Completer produces chat completions from a language model.
// Implementations must be thread-safe for concurrent use. Every pipeline
// call site has a defined degraded path for completion failures and must
// never let a completion error escape mid-query.
type Completer interface {
	// Complete runs one completion request and returns the raw model text.
	// Returns an error if the request fails or the model returns no choices.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Completer instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the chat completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
