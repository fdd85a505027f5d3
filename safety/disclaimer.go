package safety

import (
	"strings"
)

type DisclaimerCategory string

const CategoryGeneral DisclaimerCategory = "general"
const CategoryMedical DisclaimerCategory = "medical"
const CategoryMental DisclaimerCategory = "mental"
const CategoryEmergency DisclaimerCategory = "emergency"

const DefaultLanguage = "en"

var medicalKeywords = []string{
	"disease", "symptom", "treatment", "diagnosis", "medicine", "medication",
	"prescription", "dosage", "infection", "chronic", "cancer", "diabetes",
	"blood pressure", "surgery", "vaccine",
}

var mentalKeywords = []string{
	"anxiety", "depression", "stress", "therapy", "therapist", "panic attack",
	"burnout", "insomnia", "mental health", "counseling",
}

// Independent from the moderation matchers: a cheap topical check used to decide whether a
// generated response needs the standard health disclaimer appended.
var healthTopicKeywords = []string{
	"health", "symptom", "medicine", "medication", "doctor", "treatment",
	"disease", "diagnosis", "pain", "fever", "cold", "flu", "headache",
	"vaccine", "diet", "nutrition", "exercise", "sleep",
}

// The localized safety notices. Unknown language codes fall back to DefaultLanguage
// deterministically; selection never fails.
var disclaimerLocales = map[string]map[DisclaimerCategory]string{
	"en": {
		CategoryGeneral:   "This assistant provides general information only and is not a substitute for professional advice.",
		CategoryMedical:   "This information is educational and not a medical diagnosis. Please consult a qualified healthcare professional about your situation.",
		CategoryMental:    "If you're struggling, talking to a mental health professional can help. This assistant is not a substitute for therapy.",
		CategoryEmergency: "If this is a medical emergency, call your local emergency number immediately. Do not wait for an online response.",
	},
	"es": {
		CategoryGeneral:   "Este asistente ofrece información general y no sustituye el consejo profesional.",
		CategoryMedical:   "Esta información es educativa y no constituye un diagnóstico médico. Consulte a un profesional de la salud calificado.",
		CategoryMental:    "Si lo está pasando mal, hablar con un profesional de salud mental puede ayudar. Este asistente no sustituye la terapia.",
		CategoryEmergency: "Si se trata de una emergencia médica, llame de inmediato a su número de emergencias local. No espere una respuesta en línea.",
	},
}

// DisclaimerDecision - Ephemeral result of disclaimer selection.
type DisclaimerDecision struct {
	Category             DisclaimerCategory
	RequiresProfessional bool
	Text                 string
}

// SelectDisclaimer - Determines the disclaimer category for the text by priority
// (emergency > medical > mental > general; first match wins, categories are never combined) and
// returns the localized notice. Pure function.
func SelectDisclaimer(text string, language string) *DisclaimerDecision {
	category := CategoryGeneral
	folded := strings.ToLower(text)

	if CheckEmergency(text).IsEmergency {
		category = CategoryEmergency
	} else if containsAny(folded, medicalKeywords) {
		category = CategoryMedical
	} else if containsAny(folded, mentalKeywords) {
		category = CategoryMental
	}

	locale, ok := disclaimerLocales[strings.ToLower(language)]
	if !ok {
		locale = disclaimerLocales[DefaultLanguage]
	}

	return &DisclaimerDecision{
		Category:             category,
		RequiresProfessional: category == CategoryMedical || category == CategoryEmergency,
		Text:                 locale[category],
	}
}

// IsHealthRelated - The lightweight topic check used by the response postprocessor. Deliberately
// independent from the lexicon and misinformation matchers.
func IsHealthRelated(text string) bool {
	return containsAny(strings.ToLower(text), healthTopicKeywords)
}

func containsAny(folded string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(folded, k) {
			return true
		}
	}
	return false
}
