package synthesis

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/greenlight/core"
)

// Prompt construction limits.
const (
	maxEvidenceChars        = 1200
	DefaultMaxContextTokens = 6000
)

const synthesisSystemPrompt = `You are an entertainment industry research assistant.
Answer the question using ONLY the evidence provided. Rules:
- Every claim must be supported by the evidence; do not invent names, deals, or numbers.
- If the evidence does not answer the question, say so plainly.
- Never quote or mention internal document identifiers in your answer text.
- Propose 3-4 follow-up questions the user might ask next.
Respond with a single JSON object, no prose around it:
{"final_answer": string,
 "citations": [string, evidence ids that support the answer],
 "follow_up_questions": [string],
 "entities": [{"name": string, "role": string, "relevance": string}],
 "confidence": number between 0 and 1}`

// contextLine is the compact JSON-per-line rendering of one result.
type contextLine struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float32 `json:"score"`
}

// tokenCounter counts prompt tokens, estimating when the tokenizer
// cannot be initialized.
type tokenCounter struct {
	enc *tiktoken.Tiktoken
}

func newTokenCounter() *tokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &tokenCounter{}
	}
	return &tokenCounter{enc: enc}
}

func (t *tokenCounter) count(s string) int {
	if t.enc == nil {
		// Rough character-based estimate
		return len(s) / 4
	}
	return len(t.enc.Encode(s, nil, nil))
}

// buildUserPrompt renders the question and evidence block, truncating
// each evidence text to maxEvidenceChars and dropping trailing results
// once the token budget is spent. Returns the prompt and the ids that
// made it in.
func buildUserPrompt(queryText string, results []*core.RankedResult, counter *tokenCounter, maxTokens int) (string, []string) {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(queryText)
	b.WriteString("\n\nEvidence (one JSON object per line):\n")

	used := counter.count(b.String())
	ids := make([]string, 0, len(results))

	for _, result := range results {
		text := truncateOnRuneBoundary(result.Text, maxEvidenceChars)
		line, err := json.Marshal(contextLine{
			ID:     result.ID,
			Text:   text,
			Source: result.Metadata.Source,
			Score:  result.RerankScore,
		})
		if err != nil {
			continue
		}

		cost := counter.count(string(line)) + 1
		if used+cost > maxTokens && len(ids) > 0 {
			break
		}
		used += cost

		b.Write(line)
		b.WriteByte('\n')
		ids = append(ids, result.ID)
	}

	return b.String(), ids
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting
// a multi-byte rune.
func truncateOnRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
