// Package metrics exposes the server's Prometheus collectors.
// Collectors register on the default registry through promauto and are served
// by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts session transitions by operation and outcome
	// (ok, invalid, not_found, unavailable, error).
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_transitions_total",
			Help: "Session transitions by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// Answers counts resolved questions by correctness.
	Answers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_answers_total",
			Help: "Answered questions by result.",
		},
		[]string{"result"},
	)

	GamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_games_completed_total",
		Help: "Sessions that reached the completed state.",
	})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_sessions_created_total",
		Help: "Sessions created.",
	})

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "globe_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// AnswerResult returns the label value for Answers.
func AnswerResult(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
