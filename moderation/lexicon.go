package moderation

import (
	"strings"
)

// The static keyword tiers. Loaded once at init and never mutated, so they're safe to share
// across concurrent callers without synchronization.

const SevereTierSeverity = 10
const ModerateTierSeverity = 7
const SpamTierSeverity = 5

type lexiconTier struct {
	keywords []string
	severity int
	reason   string
}

var lexiconTiers = []lexiconTier{
	{
		severity: SevereTierSeverity,
		reason:   "contains instructions for causing serious harm",
		keywords: []string{
			"make bomb",
			"make a bomb",
			"build a bomb",
			"how to make explosives",
			"how to kill",
			"make poison at home",
			"untraceable weapon",
			"buy illegal firearms",
			"synthesize meth",
		},
	},
	{
		severity: ModerateTierSeverity,
		reason:   "contains potentially misleading health claims",
		keywords: []string{
			"miracle cure",
			"guaranteed cure",
			"secret remedy",
			"doctors hate this",
			"no need for doctors",
			"cures everything",
			"100% effective treatment",
		},
	},
	{
		severity: SpamTierSeverity,
		reason:   "matches known spam patterns",
		keywords: []string{
			"buy now",
			"click here to claim",
			"limited time offer",
			"earn money fast",
			"free gift card",
			"work from home and earn",
		},
	},
}

// LexiconResult - The outcome of scanning text against the static keyword tiers. Multiple keyword
// hits within the same tier produce exactly one reason for that tier.
type LexiconResult struct {
	Blocked  bool
	Flagged  bool
	Severity int
	Reasons  []string
}

// ScanLexicon - Scans text against the tiered keyword tables using case-insensitive substring
// containment. Pure function: no side effects, safe for concurrent use. Empty or whitespace-only
// text yields zero matches.
func ScanLexicon(text string) *LexiconResult {
	result := &LexiconResult{
		Reasons: make([]string, 0),
	}
	folded := strings.ToLower(strings.TrimSpace(text))
	if len(folded) == 0 {
		return result
	}

	for _, tier := range lexiconTiers {
		for _, k := range tier.keywords {
			if strings.Contains(folded, k) {
				if tier.severity > result.Severity {
					result.Severity = tier.severity
				}
				result.Reasons = append(result.Reasons, tier.reason)
				break // one reason per tier, not per keyword
			}
		}
	}

	result.Blocked = result.Severity >= DenySeverityThreshold
	result.Flagged = result.Severity >= FlagSeverityThreshold
	return result
}
