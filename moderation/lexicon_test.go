package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLexiconSevere(t *testing.T) {
	result := ScanLexicon("Can you tell me how to MAKE A BOMB at home?")
	assert.True(t, result.Blocked)
	assert.True(t, result.Flagged)
	assert.Equal(t, SevereTierSeverity, result.Severity)
	assert.Equal(t, []string{"contains instructions for causing serious harm"}, result.Reasons)
}

func TestScanLexiconModerate(t *testing.T) {
	result := ScanLexicon("I found a miracle cure for my back pain")
	assert.True(t, result.Blocked) // moderate severity sits at the deny threshold
	assert.True(t, result.Flagged)
	assert.Equal(t, ModerateTierSeverity, result.Severity)
	assert.Equal(t, []string{"contains potentially misleading health claims"}, result.Reasons)
}

func TestScanLexiconSpam(t *testing.T) {
	result := ScanLexicon("Buy now and get a free gift card!")
	assert.False(t, result.Blocked)
	assert.True(t, result.Flagged)
	assert.Equal(t, SpamTierSeverity, result.Severity)
	assert.Equal(t, []string{"matches known spam patterns"}, result.Reasons)
}

func TestScanLexiconOneReasonPerTier(t *testing.T) {
	// Two keywords from the same tier only produce a single reason
	result := ScanLexicon("make a bomb or how to make explosives")
	assert.Equal(t, []string{"contains instructions for causing serious harm"}, result.Reasons)
}

func TestScanLexiconMultipleTiers(t *testing.T) {
	result := ScanLexicon("buy now this miracle cure")
	assert.Equal(t, ModerateTierSeverity, result.Severity) // highest tier wins
	assert.Len(t, result.Reasons, 2)
	assert.Contains(t, result.Reasons, "contains potentially misleading health claims")
	assert.Contains(t, result.Reasons, "matches known spam patterns")
}

func TestScanLexiconNeutral(t *testing.T) {
	for _, text := range []string{
		"",
		"   \t\n ",
		"what are the symptoms of a common cold?",
		"this message mentions a bombardier jacket", // substring must match the keyword, not the other way around
	} {
		result := ScanLexicon(text)
		assert.False(t, result.Blocked, "text: %q", text)
		assert.False(t, result.Flagged, "text: %q", text)
		assert.Equal(t, 0, result.Severity, "text: %q", text)
		assert.Empty(t, result.Reasons, "text: %q", text)
	}
}
