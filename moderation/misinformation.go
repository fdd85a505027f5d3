package moderation

import (
	"regexp"
	"strings"
)

// MisinformationSeverity - Misinformation matches carry a fixed severity, assigned by the
// orchestrator rather than the detector itself.
const MisinformationSeverity = 7

type misinformationRule struct {
	pattern *regexp.Regexp
	reason  string
}

// The rules are ordered, and each embeds its own case-insensitive flag so the detector can run
// against the original (non-lowercased) text.
var misinformationRules = []misinformationRule{
	{
		pattern: regexp.MustCompile(`(?i)vaccin\w*\s+(cause[sd]?|caus(es|ing)|lead[s]?\s+to)\s+(autism|infertility)`),
		reason:  "anti-vaccine misinformation: unfounded vaccine causation claim",
	},
	{
		pattern: regexp.MustCompile(`(?i)(covid|corona\s*virus|the\s+pandemic)\s+(is|was)\s+(a\s+)?(hoax|fake|made\s+up|scam)`),
		reason:  "pandemic denial claim",
	},
	{
		pattern: regexp.MustCompile(`(?i)(cure[sd]?|heal[sd]?|reverse[sd]?)\s+(cancer|diabetes|aids|hiv|alzheimer'?s)\s+(naturally|at\s+home|without\s+(medicine|drugs|doctors|chemo))`),
		reason:  "unproven cure claim for a serious condition",
	},
	{
		pattern: regexp.MustCompile(`(?i)(doctors|big\s+pharma|the\s+government)\s+(hide[sd]?|hiding|suppress(es|ed|ing)?|cover(s|ed|ing)?\s+up)\s+(the\s+)?(cure|truth)`),
		reason:  "medical authority conspiracy framing",
	},
	{
		pattern: regexp.MustCompile(`(?i)(drink(ing)?|inject(ing)?|gargl(e|ing)\s+with)\s+(bleach|disinfectant|hydrogen\s+peroxide)`),
		reason:  "dangerous home remedy claim",
	},
	{
		pattern: regexp.MustCompile(`(?i)5g\s+(causes?|spreads?|transmits?)\s+(covid|cancer|viruses?|disease)`),
		reason:  "5g health conspiracy claim",
	},
}

// MisinformationResult - One reason per distinct rule matched.
type MisinformationResult struct {
	Flagged bool
	Reasons []string
}

// ScanMisinformation - Runs the fixed rule list against the original text. Pure function, safe
// for concurrent use.
func ScanMisinformation(text string) *MisinformationResult {
	result := &MisinformationResult{
		Reasons: make([]string, 0),
	}
	if len(strings.TrimSpace(text)) == 0 {
		return result
	}

	for _, rule := range misinformationRules {
		if rule.pattern.MatchString(text) {
			result.Reasons = append(result.Reasons, rule.reason)
		}
	}

	result.Flagged = len(result.Reasons) > 0
	return result
}
