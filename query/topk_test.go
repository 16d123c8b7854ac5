package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/greenlight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopKController_Bounds(t *testing.T) {
	c, err := NewTopKController()
	require.NoError(t, err)

	inputs := []string{
		"",
		"hi",
		"Who is Jane Doe?",
		"Compare every streamer and broadcaster and list all options for comedy versus drama as well as documentary",
		strings.Repeat("word ", 200),
	}
	for _, text := range inputs {
		k := c.Compute(text, core.IntentGeneral, nil)
		assert.GreaterOrEqual(t, k, DefaultMinK, "input: %q", text)
		assert.LessOrEqual(t, k, DefaultMaxK, "input: %q", text)
	}
}

func TestTopKController_ComplexityRaisesK(t *testing.T) {
	c, err := NewTopKController()
	require.NoError(t, err)

	simple := c.Compute("market update", core.IntentGeneral, nil)
	complex := c.Compute("market update and trends and options across several territories", core.IntentGeneral, nil)
	assert.Greater(t, complex, simple)
}

func TestTopKController_SpecificityLowersK(t *testing.T) {
	c, err := NewTopKController()
	require.NoError(t, err)

	broad := c.Compute("which executives moved jobs recently", core.IntentGeneral, nil)
	specific := c.Compute("which executives moved jobs recently", core.IntentGeneral, map[string]string{
		"region": "EMEA",
		"genre":  "crime",
	})
	assert.Less(t, specific, broad)

	named := c.Compute("did Jane Doe move jobs in 2024", core.IntentGeneral, nil)
	assert.Less(t, named, broad)
}

func TestTopKController_IntentBias(t *testing.T) {
	c, err := NewTopKController()
	require.NoError(t, err)

	text := "tell me something about the market"
	comparison := c.Compute(text, core.IntentComparison, nil)
	clarification := c.Compute(text, core.IntentClarification, nil)
	assert.Greater(t, comparison, clarification)
}

func TestTopKController_RoutingQueryAboveBase(t *testing.T) {
	c, err := NewTopKController()
	require.NoError(t, err)

	k := c.Compute("Who should I pitch a Korean crime thriller to?", core.IntentRouting, nil)
	assert.Greater(t, k, DefaultBaseK)
}

func TestTopKController_CustomRange(t *testing.T) {
	c, err := NewTopKController(WithKRange(5, 10))
	require.NoError(t, err)

	k := c.Compute("anything at all", core.IntentGeneral, nil)
	assert.GreaterOrEqual(t, k, 5)
	assert.LessOrEqual(t, k, 10)

	_, err = NewTopKController(WithKRange(10, 5))
	assert.True(t, errors.Is(err, ErrInvalidKRange))
}
