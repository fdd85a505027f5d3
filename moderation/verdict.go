package moderation

type Action string

// ActionAllow - The text passes silently.
const ActionAllow Action = "ALLOW"

// ActionFlag - The text is permitted, but a moderation record is kept for human review.
const ActionFlag Action = "FLAG"

// ActionDeny - The text must not reach a user. Terminates the request.
const ActionDeny Action = "DENY"

type Method string

const MethodKeyword Method = "keyword"
const MethodMisinformation Method = "misinformation"
const MethodMLModel Method = "ml_model"
const MethodCombined Method = "combined"

// Severity thresholds. Severity drives action eligibility for every stage except the remote
// classifier, which supplies its own label-derived severity.
const DenySeverityThreshold = 7
const FlagSeverityThreshold = 5

// Verdict - The result of a moderation stage (or of the whole pipeline). Exactly one Verdict is
// returned per moderation call.
type Verdict struct {
	Action   Action   `json:"action"`
	Severity int      `json:"severity"` // 0-10
	Reasons  []string `json:"reasons"`
	Method   Method   `json:"method"`
}

func AllowVerdict() *Verdict {
	return &Verdict{
		Action:   ActionAllow,
		Severity: 0,
		Reasons:  []string{},
		Method:   MethodCombined,
	}
}
