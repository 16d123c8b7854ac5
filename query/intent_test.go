package query

import (
	"testing"

	"github.com/poiesic/greenlight/core"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.IntentTag
	}{
		{"routing question", "Who should I pitch a Korean crime thriller to?", core.IntentRouting},
		{"comparison", "Compare Netflix and Apple for limited series", core.IntentComparison},
		{"clarification", "What do you mean by returnable format?", core.IntentClarification},
		{"deal", "Which studio acquired the spy novel rights?", core.IntentDeal},
		{"trend", "What genres are in demand right now?", core.IntentTrend},
		{"person", "Who is the new head of drama at Acme?", core.IntentPerson},
		{"pitch", "Help me tighten this logline", core.IntentPitch},
		{"fallback", "Random unrelated sentence", core.IntentGeneral},
		{"empty", "", core.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Contains both routing and pitch keywords; routing rules come first
	assert.Equal(t, core.IntentRouting, Classify("who should i pitch my pilot to"))
}
