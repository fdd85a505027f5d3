package safety

import (
	"strings"

	goSet "github.com/deckarep/golang-set"
)

type EmergencySeverity string

const EmergencySeverityNone EmergencySeverity = "none"
const EmergencySeverityLow EmergencySeverity = "low"
const EmergencySeverityMedium EmergencySeverity = "medium"
const EmergencySeverityHigh EmergencySeverity = "high"

// Self-harm ideation and acute medical crisis phrasing. A single list: the response to both is
// the same escalation path.
var emergencyKeywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"want to die",
	"hurt myself",
	"self harm",
	"self-harm",
	"overdose",
	"can't breathe",
	"cannot breathe",
	"chest pain",
	"heart attack",
	"stroke symptoms",
	"severe bleeding",
	"unconscious",
	"not breathing",
}

// EmergencyAssessment - Ephemeral result of an emergency scan. Not persisted.
type EmergencyAssessment struct {
	IsEmergency     bool
	MatchedKeywords []string
	Severity        EmergencySeverity
}

// CheckEmergency - Scans text for crisis language using case-insensitive substring containment.
// Severity is derived purely from the count of distinct matched keywords: 0 means not an
// emergency, 1 is medium, 2 or more is high. Empty text is not an emergency and never an error.
func CheckEmergency(text string) *EmergencyAssessment {
	assessment := &EmergencyAssessment{
		Severity:        EmergencySeverityNone,
		MatchedKeywords: make([]string, 0),
	}
	folded := strings.ToLower(strings.TrimSpace(text))
	if len(folded) == 0 {
		return assessment
	}

	matched := goSet.NewSet()
	for _, k := range emergencyKeywords {
		if strings.Contains(folded, k) {
			matched.Add(k)
		}
	}

	for _, k := range matched.ToSlice() {
		assessment.MatchedKeywords = append(assessment.MatchedKeywords, k.(string))
	}

	switch {
	case matched.Cardinality() >= 2:
		assessment.IsEmergency = true
		assessment.Severity = EmergencySeverityHigh
	case matched.Cardinality() == 1:
		assessment.IsEmergency = true
		assessment.Severity = EmergencySeverityMedium
	}
	return assessment
}
