package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectDisclaimerCategories(t *testing.T) {
	assertCategory := func(text string, category DisclaimerCategory, requiresProfessional bool) {
		decision := SelectDisclaimer(text, "en")
		assert.Equal(t, category, decision.Category, "text: %q", text)
		assert.Equal(t, requiresProfessional, decision.RequiresProfessional, "text: %q", text)
		assert.Equal(t, disclaimerLocales["en"][category], decision.Text, "text: %q", text)
	}

	assertCategory("thinking about suicide a lot lately", CategoryEmergency, true)
	assertCategory("what's the right dosage for this medication?", CategoryMedical, true)
	assertCategory("I've been dealing with a lot of anxiety", CategoryMental, false)
	assertCategory("how do I improve my running form?", CategoryGeneral, false)
}

func TestSelectDisclaimerEmergencyBeatsMedical(t *testing.T) {
	// Contains both emergency ("chest pain") and medical ("symptom") signals; emergency wins and
	// the categories are not combined
	decision := SelectDisclaimer("sudden chest pain, is this a symptom of something serious?", "en")
	assert.Equal(t, CategoryEmergency, decision.Category)
	assert.True(t, decision.RequiresProfessional)
}

func TestSelectDisclaimerLocales(t *testing.T) {
	decision := SelectDisclaimer("what medication helps with a fever?", "es")
	assert.Equal(t, CategoryMedical, decision.Category)
	assert.Equal(t, disclaimerLocales["es"][CategoryMedical], decision.Text)

	// Unknown languages deterministically fall back to English
	fallback := SelectDisclaimer("what medication helps with a fever?", "xx")
	assert.Equal(t, disclaimerLocales["en"][CategoryMedical], fallback.Text)

	// Language codes are case-insensitive
	upper := SelectDisclaimer("what medication helps with a fever?", "ES")
	assert.Equal(t, disclaimerLocales["es"][CategoryMedical], upper.Text)
}

func TestSelectDisclaimerEmptyText(t *testing.T) {
	decision := SelectDisclaimer("", "en")
	assert.Equal(t, CategoryGeneral, decision.Category)
	assert.False(t, decision.RequiresProfessional)
	assert.NotEmpty(t, decision.Text)
}

func TestIsHealthRelated(t *testing.T) {
	assert.True(t, IsHealthRelated("I have a headache that won't go away"))
	assert.True(t, IsHealthRelated("Tips for better SLEEP?"))
	assert.False(t, IsHealthRelated("what's the capital of France?"))
	assert.False(t, IsHealthRelated(""))
}
