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

// Package validate is the hard safety gate between synthesis and the
// caller. It scans the synthesized answer for person names that are
// not grounded in the retrieved context and neutralizes them.
package validate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/greenlight/core"
)

// Disclaimer text inserted by the validator.
const (
	SentenceDisclaimer = "Some details could not be verified against the available evidence and were removed."
	TrailingDisclaimer = "Note: one or more names in this answer could not be verified against the retrieved evidence and were removed or generalized."

	genericPlaceholder = "the executive"
)

var (
	// Labeled context fields that introduce a real name.
	labeledNamePattern = regexp.MustCompile(`(?:Executive|Talent|Producer|Director|Writer|Creator|Showrunner|Agent|Buyer|Contact|Name)\s*:\s*([A-Z][a-z]+(?: [A-Z][a-z]+)+)`)

	// "Name, Title" appositives, e.g. "Jane Doe, Head of Drama".
	appositiveNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+),\s*(?:[A-Z][a-z]+|head|chief|co-)`)

	// Capitalized bigrams in the answer that might be person names.
	answerNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
)

// roleKeywords mark a bigram as a person reference when they share its
// sentence.
var roleKeywords = []string{
	"producer", "director", "writer", "executive", "exec", "head of",
	"president", "ceo", "chief", "agent", "manager", "showrunner",
	"creator", "buyer", "chairman", "vp", "vice president",
}

// nameStoplist holds known false positives: platforms, outlets, and
// place names that match the capitalized-bigram shape.
var nameStoplist = map[string]struct{}{
	"Prime Video":     {},
	"Amazon Prime":    {},
	"Apple Tv":        {},
	"Warner Bros":     {},
	"Paramount Plus":  {},
	"New York":        {},
	"Los Angeles":     {},
	"United States":   {},
	"United Kingdom":  {},
	"South Korea":     {},
	"Latin America":   {},
	"Middle East":     {},
	"San Diego":       {},
	"Comic Con":       {},
	"Drama Series":    {},
	"Limited Series":  {},
	"Crime Thriller":  {},
	"Young Adult":     {},
	"Production Company": {},
}

// companySuffixes mark a bigram as an organization, not a person.
var companySuffixes = map[string]struct{}{
	"Studios":     {},
	"Pictures":    {},
	"Films":       {},
	"Media":       {},
	"Television":  {},
	"Productions": {},
	"Networks":    {},
	"Group":       {},
	"Agency":      {},
}

// Validator checks synthesized answers against their retrieval context.
// It is stateless and safe for concurrent use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate scans the answer for person names unsupported by the
// context texts, removes the sentences containing them, and replaces
// stray references with a generic placeholder. Deterministic; never
// fails.
func (v *Validator) Validate(answer string, contexts []string) *core.HallucinationReport {
	contextNames := extractContextNames(contexts)
	answerNames := extractAnswerNames(answer)

	flagged := make([]string, 0)
	seen := make(map[string]struct{})
	for _, name := range answerNames {
		if _, ok := contextNames[name]; ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		flagged = append(flagged, name)
	}

	cleaned := answer
	for _, name := range flagged {
		cleaned = removeSentencesWith(cleaned, name)
		cleaned = replaceBareReferences(cleaned, name)
	}
	if len(flagged) > 0 {
		cleaned = strings.TrimSpace(cleaned) + "\n\n" + TrailingDisclaimer
	}

	allowList := make([]string, 0, len(contextNames))
	for name := range contextNames {
		allowList = append(allowList, name)
	}
	sort.Strings(allowList)

	return &core.HallucinationReport{
		IsValid:           len(flagged) == 0,
		HallucinatedNames: flagged,
		CleanedAnswer:     cleaned,
		ContextNames:      allowList,
	}
}

// extractContextNames builds the allow-list of names grounded in the
// retrieved context.
func extractContextNames(contexts []string) map[string]struct{} {
	names := make(map[string]struct{})
	joined := strings.Join(contexts, "\n")

	for _, match := range labeledNamePattern.FindAllStringSubmatch(joined, -1) {
		names[match[1]] = struct{}{}
	}
	for _, match := range appositiveNamePattern.FindAllStringSubmatch(joined, -1) {
		names[match[1]] = struct{}{}
	}
	return names
}

// extractAnswerNames finds capitalized bigrams in the answer that look
// like person references: they share a sentence with a role keyword
// and are not on the stoplist.
func extractAnswerNames(answer string) []string {
	names := make([]string, 0)
	for _, sentence := range splitSentences(answer) {
		lower := strings.ToLower(sentence)
		hasRole := false
		for _, role := range roleKeywords {
			if strings.Contains(lower, role) {
				hasRole = true
				break
			}
		}
		if !hasRole {
			continue
		}
		for _, match := range answerNamePattern.FindAllStringSubmatch(sentence, -1) {
			if _, stop := nameStoplist[match[1]]; stop {
				continue
			}
			tokens := strings.Fields(match[1])
			if _, org := companySuffixes[tokens[len(tokens)-1]]; org {
				continue
			}
			names = append(names, match[1])
		}
	}
	return names
}

// removeSentencesWith replaces every sentence containing name with the
// removal disclaimer. Sentence boundaries are the nearest preceding
// and following periods.
func removeSentencesWith(text, name string) string {
	for {
		idx := strings.Index(text, name)
		if idx < 0 {
			return text
		}

		start := strings.LastIndex(text[:idx], ".")
		if start < 0 {
			start = 0
		} else {
			start++ // keep the preceding period
		}

		end := strings.Index(text[idx:], ".")
		if end < 0 {
			end = len(text)
		} else {
			end = idx + end + 1 // drop the trailing period too
		}

		replacement := " " + SentenceDisclaimer
		if start == 0 {
			replacement = SentenceDisclaimer
		}
		text = text[:start] + replacement + text[end:]
	}
}

// replaceBareReferences rewrites leftover mentions of the name's last
// token, including the possessive form, with a generic placeholder.
func replaceBareReferences(text, name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return text
	}
	last := parts[len(parts)-1]

	possessive := regexp.MustCompile(`\b` + regexp.QuoteMeta(last) + `'s\b`)
	text = possessive.ReplaceAllString(text, genericPlaceholder+"'s")

	bare := regexp.MustCompile(`\b` + regexp.QuoteMeta(last) + `\b`)
	return bare.ReplaceAllString(text, genericPlaceholder)
}

// splitSentences splits on periods. The removal pass uses the same
// period-based boundaries.
func splitSentences(text string) []string {
	return strings.Split(text, ".")
}
