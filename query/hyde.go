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

package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/greenlight/ai"
	"github.com/poiesic/greenlight/cache"
	"github.com/poiesic/greenlight/core"
)

// DefaultHyDECacheCapacity bounds the hypothetical-answer cache.
const DefaultHyDECacheCapacity = 100

const hydeSystemPrompt = `You write short hypothetical answers to entertainment industry questions.
Write 2-4 factual-toned sentences that read like a real answer, naming the
kinds of buyers, formats, and market signals such an answer would contain.
Do not hedge, do not ask questions back, do not mention that the answer is
hypothetical.`

// HyDEGenerator produces a plausible answer text for a question. The
// text is embedded in place of the raw query to anchor retrieval.
// Model failures degrade silently to fixed templates.
type HyDEGenerator struct {
	completer ai.Completer
	hypoCache *cache.LRU[string, string]
	logger    *slog.Logger
}

// HyDEOption configures a HyDEGenerator.
type HyDEOption func(*HyDEGenerator) error

// WithHyDECacheCapacity overrides the answer cache capacity.
func WithHyDECacheCapacity(capacity int) HyDEOption {
	return func(g *HyDEGenerator) error {
		if capacity < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidCacheCapacity, capacity)
		}
		g.hypoCache = cache.NewLRU[string, string](capacity)
		return nil
	}
}

// WithHyDELogger overrides the default logger.
func WithHyDELogger(logger *slog.Logger) HyDEOption {
	return func(g *HyDEGenerator) error {
		g.logger = logger
		return nil
	}
}

// NewHyDEGenerator creates a generator. The completer may be nil, in
// which case every call takes the template path.
func NewHyDEGenerator(completer ai.Completer, opts ...HyDEOption) (*HyDEGenerator, error) {
	g := &HyDEGenerator{
		completer: completer,
		hypoCache: cache.NewLRU[string, string](DefaultHyDECacheCapacity),
		logger:    slog.Default().With("component", "hyde"),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Generate returns a hypothetical answer for the query. Never fails:
// model errors fall back to a deterministic template.
func (g *HyDEGenerator) Generate(ctx context.Context, queryText string, intent core.IntentTag) string {
	key := strings.ToLower(strings.TrimSpace(queryText))
	if cached, ok := g.hypoCache.Get(key); ok {
		return cached
	}

	if g.completer != nil {
		text, err := g.completer.Complete(ctx, ai.CompletionRequest{
			System:      hydeSystemPrompt,
			User:        queryText,
			Temperature: 0.2,
			MaxTokens:   200,
		})
		if err == nil && strings.TrimSpace(text) != "" {
			text = strings.TrimSpace(text)
			g.hypoCache.Put(key, text)
			return text
		}
		if err != nil {
			g.logger.Debug("hypothetical generation failed, using template", "error", err)
		}
	}

	return templateHypothetical(queryText, intent)
}

// templateHypothetical is the deterministic no-model fallback, keyed
// off keyword matches and the intent tag.
func templateHypothetical(queryText string, intent core.IntentTag) string {
	lower := strings.ToLower(queryText)

	switch {
	case strings.Contains(lower, "pitch") || intent == core.IntentRouting:
		return "The most receptive buyers for this project are development executives whose recent commissions match its genre and region. Heads of drama and acquisitions leads at streamers with active slates in this space are the natural first calls."
	case strings.Contains(lower, "mandate") || intent == core.IntentTrend:
		return "Current commissioning mandates favor returnable series with strong regional identity and built-in audiences. Buyers are prioritizing proven formats and talent attachments over untested concepts this cycle."
	case intent == core.IntentPerson:
		return "This executive's track record spans development and commissioning roles across several major outlets, with recent credits concentrated in scripted drama."
	case intent == core.IntentDeal:
		return "The deal involves an option and development commitment, with the acquiring party taking distribution rights across its core territories."
	case intent == core.IntentComparison:
		return "The two options differ mainly in audience reach, commissioning appetite, and the kinds of projects each has greenlit recently."
	default:
		return "Recent industry activity relevant to this question includes commissioning moves, executive changes, and market trends reported in the trades. " + queryText
	}
}
