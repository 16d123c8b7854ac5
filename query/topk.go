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
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/greenlight/core"
)

// Default retrieval breadth bounds.
const (
	DefaultMinK  = 3
	DefaultMaxK  = 20
	DefaultBaseK = 8
)

// Complexity scoring internals. The raw score starts at rawBase and is
// clamped to [0, rawCeiling] before rescaling into [minK, maxK].
const (
	rawBase    = 5.0
	rawCeiling = 15.0

	wordCountCap     = 5.0
	markerWeight     = 2.0
	attributeWeight  = 1.5
	bigramPenalty    = 2.0
	datePenalty      = 2.0
	whPenalty        = 2.0
	explanatoryBonus = 2.0
)

var (
	// Markers that indicate a broad or multi-part question.
	complexityMarkers = []*regexp.Regexp{
		regexp.MustCompile(`\b(and|or|as well as|along with|plus)\b`),
		regexp.MustCompile(`\b(compare|compared|versus|vs\.?|difference|differ|better|worse)\b`),
		regexp.MustCompile(`\b(all|every|each|list|top|multiple|several|various|options|kinds|types)\b`),
	}

	// Specificity signals that justify a narrower retrieval.
	properNounBigram = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	yearToken        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

var intentBias = map[core.IntentTag]float64{
	core.IntentPitch:         1,
	core.IntentTrend:         3,
	core.IntentPerson:        -2,
	core.IntentDeal:          0,
	core.IntentComparison:    5,
	core.IntentRouting:       2,
	core.IntentClarification: -3,
	core.IntentGeneral:       0,
}

// TopKController picks how many candidates to retrieve for a query.
// Broad, multi-part questions get more candidates; narrowly specified
// ones get fewer. Compute is pure and total for any input string.
type TopKController struct {
	minK int
	maxK int
}

// TopKOption configures a TopKController.
type TopKOption func(*TopKController) error

// WithKRange overrides the [minK, maxK] output bounds.
func WithKRange(minK, maxK int) TopKOption {
	return func(c *TopKController) error {
		if minK < 1 || maxK <= minK {
			return fmt.Errorf("%w: [%d, %d]", ErrInvalidKRange, minK, maxK)
		}
		c.minK = minK
		c.maxK = maxK
		return nil
	}
}

// NewTopKController creates a controller with default bounds 3..20.
func NewTopKController(opts ...TopKOption) (*TopKController, error) {
	c := &TopKController{minK: DefaultMinK, maxK: DefaultMaxK}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Compute scores the query's complexity and specificity and maps the
// result into [minK, maxK].
func (c *TopKController) Compute(text string, intent core.IntentTag, attributes map[string]string) int {
	lower := strings.ToLower(text)
	raw := rawBase

	words := len(strings.Fields(text))
	wordScore := float64(words) / 3.0
	if wordScore > wordCountCap {
		wordScore = wordCountCap
	}
	raw += wordScore

	for _, marker := range complexityMarkers {
		raw += markerWeight * float64(len(marker.FindAllString(lower, -1)))
	}

	raw += intentBias[intent]

	if strings.HasPrefix(lower, "why ") || strings.HasPrefix(lower, "how ") {
		raw += explanatoryBonus
	} else if strings.HasPrefix(lower, "who ") || strings.HasPrefix(lower, "what ") || strings.HasPrefix(lower, "where ") {
		raw -= whPenalty
	}

	if properNounBigram.MatchString(text) {
		raw -= bigramPenalty
	}
	if yearToken.MatchString(text) {
		raw -= datePenalty
	}
	raw -= attributeWeight * float64(len(attributes))

	if raw < 0 {
		raw = 0
	}
	if raw > rawCeiling {
		raw = rawCeiling
	}

	return c.minK + int(raw/rawCeiling*float64(c.maxK-c.minK))
}

// MinK returns the lower output bound.
func (c *TopKController) MinK() int { return c.minK }

// MaxK returns the upper output bound.
func (c *TopKController) MaxK() int { return c.maxK }
