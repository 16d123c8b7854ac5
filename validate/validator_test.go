package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_GroundedNamePasses(t *testing.T) {
	v := NewValidator()

	answer := "Jane Doe, Producer, is the right contact for this project."
	report := v.Validate(answer, []string{"Executive: Jane Doe\nCompany: Acme Studios"})

	assert.True(t, report.IsValid)
	assert.Empty(t, report.HallucinatedNames)
	assert.Equal(t, answer, report.CleanedAnswer, "no mutation for grounded answers")
	assert.Contains(t, report.ContextNames, "Jane Doe")
}

func TestValidator_UngroundedNameIsRemoved(t *testing.T) {
	v := NewValidator()

	answer := "The market favors thrillers. John Smith, Director, is attached to the project. Expect more deals soon."
	report := v.Validate(answer, []string{"Executive: Jane Doe"})

	assert.False(t, report.IsValid)
	assert.Contains(t, report.HallucinatedNames, "John Smith")
	assert.NotContains(t, report.CleanedAnswer, "John Smith")
	assert.Contains(t, report.CleanedAnswer, SentenceDisclaimer)
	assert.Contains(t, report.CleanedAnswer, TrailingDisclaimer)
	assert.Contains(t, report.CleanedAnswer, "The market favors thrillers.")
	assert.Contains(t, report.CleanedAnswer, "Expect more deals soon.")
}

func TestValidator_BareLastTokenReplaced(t *testing.T) {
	v := NewValidator()

	answer := "John Smith, Director, leads the slate. Smith's priorities are thrillers. Contact Smith directly."
	report := v.Validate(answer, nil)

	require.False(t, report.IsValid)
	assert.NotContains(t, report.CleanedAnswer, "Smith")
	assert.Contains(t, report.CleanedAnswer, "the executive's priorities")
	assert.Contains(t, report.CleanedAnswer, "Contact the executive directly")
}

func TestValidator_AppositiveContextNames(t *testing.T) {
	v := NewValidator()

	report := v.Validate(
		"Maria Garcia, Producer, closed the deal.",
		[]string{"The trade reports that Maria Garcia, Head of Drama, closed a first-look deal."},
	)
	assert.True(t, report.IsValid)
	assert.Contains(t, report.ContextNames, "Maria Garcia")
}

func TestValidator_StoplistIgnored(t *testing.T) {
	v := NewValidator()

	report := v.Validate("The head of drama at Prime Video wants thrillers set in Los Angeles.", nil)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.HallucinatedNames)
}

func TestValidator_BigramWithoutRoleIgnored(t *testing.T) {
	v := NewValidator()

	// No role keyword in the sentence, so the bigram is not treated
	// as a person reference
	report := v.Validate("The series is set in Busan Harbor.", nil)
	assert.True(t, report.IsValid)
}

func TestValidator_DeduplicatesFlaggedNames(t *testing.T) {
	v := NewValidator()

	answer := "John Smith, Producer, said yes. Later John Smith, Producer, confirmed."
	report := v.Validate(answer, nil)

	count := 0
	for _, name := range report.HallucinatedNames {
		if name == "John Smith" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidator_EmptyInputs(t *testing.T) {
	v := NewValidator()

	report := v.Validate("", nil)
	assert.True(t, report.IsValid)
	assert.Equal(t, "", report.CleanedAnswer)

	report = v.Validate("An answer with no names at all.", []string{})
	assert.True(t, report.IsValid)
	assert.Equal(t, "An answer with no names at all.", report.CleanedAnswer)
}

func TestValidator_MultipleUngroundedNames(t *testing.T) {
	v := NewValidator()

	answer := "John Smith, Director, is attached. Maria Garcia, Producer, is financing."
	report := v.Validate(answer, []string{"Executive: Someone Else"})

	assert.False(t, report.IsValid)
	assert.Len(t, report.HallucinatedNames, 2)
	assert.NotContains(t, report.CleanedAnswer, "John Smith")
	assert.NotContains(t, report.CleanedAnswer, "Maria Garcia")
	assert.Equal(t, 1, strings.Count(report.CleanedAnswer, TrailingDisclaimer))
}
