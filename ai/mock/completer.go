package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/greenlight/ai"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default deterministic behavior.
	CompleteFunc func(ctx context.Context, req ai.CompletionRequest) (string, error)

	callCount int
}

// NewMockCompleter creates a mock completer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockCompleter().
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns a deterministic canned response echoing the user content.
// When JSONMode is requested, the default response is a minimal valid JSON
// object so that contract parsers succeed without injected behavior.
func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	if req.JSONMode {
		return fmt.Sprintf(`{"final_answer": "Mock answer for: %s", "follow_up_questions": [], "entities": [], "confidence": 0.5}`,
			firstLine(req.User)), nil
	}

	return "Mock completion for: " + firstLine(req.User), nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockCompleter) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
}

// firstLine returns the first line of s, keeping canned responses compact.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
