package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type FlagWriteOutcome string

const FlagWriteOutcomeOk FlagWriteOutcome = "ok"
const FlagWriteOutcomeError FlagWriteOutcome = "error"
const FlagWriteOutcomeRejected FlagWriteOutcome = "rejected"

type ClassifierOutcome string

const ClassifierOutcomeParsed ClassifierOutcome = "parsed"
const ClassifierOutcomeUnparseable ClassifierOutcome = "unparseable"
const ClassifierOutcomeUnreachable ClassifierOutcome = "unreachable"

var Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardrail_moderation_verdicts",
	Help: "The total number of moderation verdicts returned",
}, []string{"action", "method"})

var FlagWrites = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardrail_flag_writes",
	Help: "The total number of flag ledger writes, by outcome",
}, []string{"outcome"})

var ClassifierOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardrail_classifier_outcomes",
	Help: "The total number of remote classifier calls, by outcome",
}, []string{"outcome"})

var PendingFlags = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "guardrail_pending_flags",
	Help: "The number of flags currently awaiting review",
})

func RecordVerdict(action string, method string) {
	Verdicts.With(prometheus.Labels{
		"action": action,
		"method": method,
	}).Inc()
}

func RecordFlagWrite(outcome FlagWriteOutcome) {
	FlagWrites.With(prometheus.Labels{
		"outcome": string(outcome),
	}).Inc()
}

func RecordClassifierOutcome(outcome ClassifierOutcome) {
	ClassifierOutcomes.With(prometheus.Labels{
		"outcome": string(outcome),
	}).Inc()
}

func SetPendingFlags(count int64) {
	PendingFlags.Set(float64(count))
}
