package query

import "strings"

// ExpansionStrategy bounds how many synonyms are used per matched term.
type ExpansionStrategy int

const (
	StrategyConservative ExpansionStrategy = iota
	StrategyBalanced
	StrategyAggressive
)

// synonymsPerTerm returns the per-term variant cap for the strategy.
func (s ExpansionStrategy) synonymsPerTerm() int {
	switch s {
	case StrategyConservative:
		return 1
	case StrategyAggressive:
		return 3
	default:
		return 2
	}
}

type lexiconEntry struct {
	term     string
	synonyms []string
}

// The lexicons are ordered slices, not maps, so expansion output is
// deterministic for identical inputs.
var synonymLexicon = []lexiconEntry{
	// formats
	{"series", []string{"show", "drama series"}},
	{"film", []string{"movie", "feature"}},
	{"feature", []string{"film", "movie"}},
	{"documentary", []string{"doc", "docuseries"}},
	{"limited series", []string{"miniseries", "event series"}},
	// genres
	{"thriller", []string{"suspense", "crime drama"}},
	{"crime", []string{"noir", "procedural"}},
	{"comedy", []string{"sitcom", "dramedy"}},
	{"romance", []string{"romantic drama", "love story"}},
	{"horror", []string{"genre", "elevated horror"}},
	// roles
	{"executive", []string{"exec", "buyer"}},
	{"producer", []string{"production company", "prodco"}},
	{"writer", []string{"screenwriter", "creator"}},
	{"director", []string{"filmmaker", "helmer"}},
	// regions
	{"korean", []string{"south korean", "k-drama"}},
	{"british", []string{"uk"}},
	{"european", []string{"emea"}},
	{"latin american", []string{"latam"}},
}

var abbreviationLexicon = []lexiconEntry{
	{"svod", []string{"subscription streaming"}},
	{"avod", []string{"ad-supported streaming"}},
	{"ip", []string{"intellectual property"}},
	{"ya", []string{"young adult"}},
	{"mow", []string{"movie of the week"}},
	{"emea", []string{"europe middle east and africa"}},
	{"latam", []string{"latin america"}},
}

// Expander produces lexical variants of a question for multi-query
// retrieval. It is stateless and safe for concurrent use.
type Expander struct{}

// NewExpander creates an Expander.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns the original query followed by up to maxExpansions
// variants. Terms are matched against a lowercased shadow of the
// query; each variant replaces only the first whole-word occurrence
// in the original text, so casing outside the replaced term survives.
// One variant is generated per synonym up to the strategy's per-term
// cap. Duplicates are dropped. Same input and strategy always yields
// the same output.
func (e *Expander) Expand(queryText string, maxExpansions int, strategy ExpansionStrategy) []string {
	out := []string{queryText}
	if maxExpansions <= 0 {
		return out
	}

	lower := strings.ToLower(queryText)
	perTerm := strategy.synonymsPerTerm()

	seen := map[string]struct{}{lower: {}}

	for _, lexicon := range [][]lexiconEntry{synonymLexicon, abbreviationLexicon} {
		for _, entry := range lexicon {
			idx := wholeWordIndex(lower, entry.term)
			if idx < 0 {
				continue
			}
			limit := perTerm
			if limit > len(entry.synonyms) {
				limit = len(entry.synonyms)
			}
			for _, syn := range entry.synonyms[:limit] {
				variant := queryText[:idx] + syn + queryText[idx+len(entry.term):]
				key := strings.ToLower(variant)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, variant)
				if len(out)-1 >= maxExpansions {
					return out
				}
			}
		}
	}
	return out
}

// ExpandWithOr rewrites the query for backends that accept boolean
// syntax, replacing each token with lexicon matches by an inline
// disjunction group like "(crime OR noir OR procedural)".
func (e *Expander) ExpandWithOr(queryText string) string {
	tokens := strings.Fields(strings.ToLower(queryText))
	for i, token := range tokens {
		bare := strings.Trim(token, ".,!?;:\"'()")
		if bare == "" {
			continue
		}
		syns := lookupSynonyms(bare)
		if len(syns) == 0 {
			continue
		}
		group := "(" + bare + " OR " + strings.Join(syns, " OR ") + ")"
		tokens[i] = strings.Replace(token, bare, group, 1)
	}
	return strings.Join(tokens, " ")
}

func lookupSynonyms(term string) []string {
	for _, lexicon := range [][]lexiconEntry{synonymLexicon, abbreviationLexicon} {
		for _, entry := range lexicon {
			if entry.term == term {
				return entry.synonyms
			}
		}
	}
	return nil
}

// wholeWordIndex finds the first occurrence of term in s that is
// bounded by non-word characters on both sides, or -1.
func wholeWordIndex(s, term string) int {
	if term == "" {
		return -1
	}
	from := 0
	for {
		i := strings.Index(s[from:], term)
		if i < 0 {
			return -1
		}
		i += from
		startOK := i == 0 || !isWordChar(s[i-1])
		end := i + len(term)
		endOK := end == len(s) || !isWordChar(s[end])
		if startOK && endOK {
			return i
		}
		from = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
