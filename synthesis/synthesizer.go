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

package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/core"
)

// Defaults for the synthesizer.
const (
	DefaultTemperature    = 0.4
	DefaultMaxTokens      = 1024
	DefaultWrapConfidence = 0.3
)

// Synthesizer builds the answer prompt and parses the model's reply.
type Synthesizer struct {
	completer        ai.Completer
	counter          *tokenCounter
	maxContextTokens int
	logger           *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithMaxContextTokens bounds the evidence block in the prompt.
func WithMaxContextTokens(maxTokens int) Option {
	return func(s *Synthesizer) error {
		if maxTokens > 0 {
			s.maxContextTokens = maxTokens
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSynthesizer creates a synthesizer over the completer.
func NewSynthesizer(completer ai.Completer, opts ...Option) (*Synthesizer, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	s := &Synthesizer{
		completer:        completer,
		counter:          newTokenCounter(),
		maxContextTokens: DefaultMaxContextTokens,
		logger:           slog.Default().With("component", "synthesizer"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// modelReply is the strict output contract expected from the model.
type modelReply struct {
	FinalAnswer       string               `json:"final_answer"`
	Citations         []string             `json:"citations"`
	FollowUpQuestions []string             `json:"follow_up_questions"`
	Entities          []core.EntityMention `json:"entities"`
	Confidence        float64              `json:"confidence"`
}

// Synthesize invokes the LLM once over the query and ranked evidence.
// Malformed model output never causes an error; it is wrapped as a
// plain answer with default confidence. Only a failed completion call
// returns an error.
func (s *Synthesizer) Synthesize(ctx context.Context, queryText string, results []*core.RankedResult) (*core.SynthesizedAnswer, error) {
	prompt, promptIDs := buildUserPrompt(queryText, results, s.counter, s.maxContextTokens)

	raw, err := s.completer.Complete(ctx, ai.CompletionRequest{
		System:      synthesisSystemPrompt,
		User:        prompt,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	answer := s.parseReply(raw, promptIDs)
	answer.Citations = filterCitations(answer.Citations, promptIDs)
	if len(answer.Citations) == 0 {
		// The model cited nothing usable; fall back to everything it saw
		answer.Citations = append([]string(nil), promptIDs...)
	}
	return answer, nil
}

// parseReply parses the model text against the output contract,
// wrapping the raw text when parsing fails.
func (s *Synthesizer) parseReply(raw string, promptIDs []string) *core.SynthesizedAnswer {
	cleaned := stripFences(raw)

	var reply modelReply
	err := json.Unmarshal([]byte(cleaned), &reply)
	if err != nil {
		err = json.Unmarshal([]byte(repairJSON(cleaned)), &reply)
	}
	if err != nil || strings.TrimSpace(reply.FinalAnswer) == "" {
		s.logger.Warn("unparsable synthesis output, wrapping raw text", "error", err)
		return &core.SynthesizedAnswer{
			Answer:     strings.TrimSpace(raw),
			Citations:  append([]string(nil), promptIDs...),
			Confidence: DefaultWrapConfidence,
		}
	}

	confidence := reply.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &core.SynthesizedAnswer{
		Answer:            strings.TrimSpace(reply.FinalAnswer),
		Citations:         reply.Citations,
		Entities:          reply.Entities,
		Confidence:        confidence,
		FollowUpQuestions: reply.FollowUpQuestions,
	}
}

// filterCitations drops citations that do not reference a prompt id.
func filterCitations(citations, promptIDs []string) []string {
	allowed := make(map[string]struct{}, len(promptIDs))
	for _, id := range promptIDs {
		allowed[id] = struct{}{}
	}

	kept := make([]string, 0, len(citations))
	seen := make(map[string]struct{}, len(citations))
	for _, id := range citations {
		if _, ok := allowed[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	return kept
}

// stripFences removes a markdown code fence wrapping, if present.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
