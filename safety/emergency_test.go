package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckEmergencySingleKeyword(t *testing.T) {
	assessment := CheckEmergency("I have chest pain after climbing the stairs")
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, EmergencySeverityMedium, assessment.Severity)
	assert.Equal(t, []string{"chest pain"}, assessment.MatchedKeywords)
}

func TestCheckEmergencyMultipleKeywords(t *testing.T) {
	assessment := CheckEmergency("I have CHEST PAIN and I can't breathe")
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, EmergencySeverityHigh, assessment.Severity)
	assert.Len(t, assessment.MatchedKeywords, 2)
	assert.Contains(t, assessment.MatchedKeywords, "chest pain")
	assert.Contains(t, assessment.MatchedKeywords, "can't breathe")
}

func TestCheckEmergencyRepeatedKeywordCountsOnce(t *testing.T) {
	// The same keyword appearing twice is still a single distinct match
	assessment := CheckEmergency("chest pain, really bad chest pain")
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, EmergencySeverityMedium, assessment.Severity)
	assert.Equal(t, []string{"chest pain"}, assessment.MatchedKeywords)
}

func TestCheckEmergencySelfHarm(t *testing.T) {
	assessment := CheckEmergency("I want to end my life")
	assert.True(t, assessment.IsEmergency)
	assert.Equal(t, EmergencySeverityMedium, assessment.Severity)
	assert.Equal(t, []string{"end my life"}, assessment.MatchedKeywords)
}

func TestCheckEmergencyNeutral(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"what are the symptoms of a common cold?",
		"my chest feels fine today",
	} {
		assessment := CheckEmergency(text)
		assert.False(t, assessment.IsEmergency, "text: %q", text)
		assert.Equal(t, EmergencySeverityNone, assessment.Severity, "text: %q", text)
		assert.Empty(t, assessment.MatchedKeywords, "text: %q", text)
	}
}
