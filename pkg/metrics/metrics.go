// Package metrics holds the Prometheus collectors of the chat backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio_chat"

var (
	chatTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns by classification label and result.",
		},
		[]string{"label", "result"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused because the daily quota was used up.",
		},
		[]string{"kind"},
	)

	turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time from classification to the last streamed token.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"label"},
	)

	contactDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_deliveries_total",
			Help:      "Contact emails by final delivery status.",
		},
		[]string{"status"},
	)

	knowledgeEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "knowledge_entries",
			Help:      "Entries in the currently loaded knowledge snapshot.",
		},
	)

	reloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Knowledge and prompt reloads by result.",
		},
		[]string{"result"},
	)
)

// ObserveTurn records a finished chat turn. result is "ok", "error" or "cancelled".
func ObserveTurn(label, result string, elapsed time.Duration) {
	chatTurnsTotal.WithLabelValues(label, result).Inc()
	turnDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// RateLimited counts a refusal. kind is "chat" or "contact".
func RateLimited(kind string) {
	rateLimitedTotal.WithLabelValues(kind).Inc()
}

func ContactDelivered(status string) {
	contactDeliveriesTotal.WithLabelValues(status).Inc()
}

func SetKnowledgeEntries(n int) {
	knowledgeEntries.Set(float64(n))
}

func Reloaded(ok bool) {
	if ok {
		reloadsTotal.WithLabelValues("ok").Inc()
		return
	}
	reloadsTotal.WithLabelValues("error").Inc()
}
