package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ProviderStatus string

const ProviderStatusOk ProviderStatus = "ok"
const ProviderStatusError ProviderStatus = "error"
const ProviderStatusTimeout ProviderStatus = "timeout"

var ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardrail_generation_provider_attempts",
	Help: "The total number of generation provider attempts",
}, []string{"provider", "status"})

var FallbackResponses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guardrail_generation_fallback_responses",
	Help: "The total number of responses synthesized locally because every provider failed",
})

var ValidationIssues = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guardrail_response_validation_issues",
	Help: "Advisory validation issues observed on outbound responses",
}, []string{"issue"})

func RecordProviderAttempt(provider string, status ProviderStatus) {
	ProviderAttempts.With(prometheus.Labels{
		"provider": provider,
		"status":   string(status),
	}).Inc()
}

func RecordFallbackResponse() {
	FallbackResponses.Inc()
}

func RecordValidationIssue(issue string) {
	ValidationIssues.With(prometheus.Labels{
		"issue": issue,
	}).Inc()
}
