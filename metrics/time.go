package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var QueueWaitTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guardrail_queue_wait_time_seconds",
	Help: "The time spent waiting in the moderation queue",
}, []string{"waitedUntil"})

var ClassifierTime = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "guardrail_classifier_time_seconds",
	Help: "The time spent calling the remote classifier",
})

var ProviderTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guardrail_generation_provider_time_seconds",
	Help: "The time spent in each generation provider attempt",
}, []string{"provider"})

func StartQueueTimer() *prometheus.Timer {
	return prometheus.NewTimer(QueueWaitTime.With(prometheus.Labels{
		"waitedUntil": "UNSET",
	}))
}

func StartClassifierTimer() *prometheus.Timer {
	return prometheus.NewTimer(ClassifierTime)
}

func StartProviderTimer(provider string) *prometheus.Timer {
	return prometheus.NewTimer(ProviderTime.With(prometheus.Labels{
		"provider": provider,
	}))
}
