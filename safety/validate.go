package safety

import (
	"regexp"
	"strings"
)

// Harmful-advice heuristics for outbound responses. These are advisory: a violation is a
// telemetry signal, never a delivery block, because withholding emergency guidance over a brittle
// heuristic is worse than a weakly validated message reaching the user.

const IssueExplicitDosing = "explicit_dosing_instructions"
const IssueDiscouragesCare = "discourages_professional_care"
const IssueAbsoluteClaim = "absolute_certainty_medical_claim"
const IssueMissingEmergencyMarkers = "emergency_response_missing_markers"

var dosingPattern = regexp.MustCompile(`(?i)take\s+\d+\s*(mg|milligrams?|ml|pills?|tablets?|doses?)`)

var discourageCarePhrases = []string{
	"don't see a doctor",
	"do not see a doctor",
	"no need to see a doctor",
	"avoid the hospital",
	"skip your medication",
	"stop taking your medication",
}

var absoluteClaimPhrases = []string{
	"this will definitely cure",
	"guaranteed to cure",
	"100% effective",
	"always works",
	"cannot fail",
}

// Markers we expect in a response that answered an emergency query.
var emergencyResponseMarkers = []string{
	"emergency",
	"911",
	"112",
	"crisis",
	"helpline",
	"hotline",
	"call",
}

// ValidateResponse - Scans the final response text against the harmful-advice heuristics and, when
// the original query was an emergency, confirms the response carries emergency-relevant markers.
// Returns the observed issues; the caller logs and counts them but still delivers the response.
func ValidateResponse(responseText string, originalQuery string) []string {
	issues := make([]string, 0)
	folded := strings.ToLower(responseText)

	if dosingPattern.MatchString(responseText) {
		issues = append(issues, IssueExplicitDosing)
	}
	if containsAny(folded, discourageCarePhrases) {
		issues = append(issues, IssueDiscouragesCare)
	}
	if containsAny(folded, absoluteClaimPhrases) {
		issues = append(issues, IssueAbsoluteClaim)
	}

	if CheckEmergency(originalQuery).IsEmergency && !containsAny(folded, emergencyResponseMarkers) {
		issues = append(issues, IssueMissingEmergencyMarkers)
	}

	return issues
}
