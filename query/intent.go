package query

import (
	"strings"

	"github.com/poiesic/greenlight/core"
)

// intentRule maps keyword patterns to an intent tag. Rules are checked
// in order and the first match wins.
type intentRule struct {
	tag      core.IntentTag
	patterns []string
}

var intentRules = []intentRule{
	{core.IntentRouting, []string{
		"who should i pitch", "who do i pitch", "where should i send",
		"who should i send", "pitch to", "submit to", "who is buying",
	}},
	{core.IntentComparison, []string{
		"compare", " vs ", " vs. ", "versus", "difference between",
		"better fit", "which is better",
	}},
	{core.IntentClarification, []string{
		"what do you mean", "can you clarify", "can you rephrase",
		"i don't understand", "explain that again",
	}},
	{core.IntentDeal, []string{
		"deal", "acquisition", "acquired", "optioned", "greenlit",
		"greenlighted", "commissioned", "picked up",
	}},
	{core.IntentTrend, []string{
		"trend", "mandate", "market", "in demand", "looking for",
		"buying right now", "appetite",
	}},
	{core.IntentPerson, []string{
		"who is ", "background on", "track record", "bio of",
		"tell me about",
	}},
	{core.IntentPitch, []string{
		"pitch", "logline", "packaging", "attach", "sell my",
	}},
}

// Classify labels a question with a coarse intent tag using ordered
// keyword matching. Unmatched text gets IntentGeneral. Pure and total.
func Classify(text string) core.IntentTag {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return rule.tag
			}
		}
	}
	return core.IntentGeneral
}
