package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot.
type Metrics struct {
	MessagesHandled *prometheus.CounterVec
	Matches         *prometheus.CounterVec
	MatchScore      prometheus.Histogram
	ProviderErrors  *prometheus.CounterVec
	MemoryFailures  prometheus.Counter
	ConnectorDrops  prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MessagesHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_handled_total",
			Help:      "Messages processed by kind (mention, ambient, command).",
		}, []string{"kind"}),
		Matches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Answer lookups by strategy and outcome (kb, ai, none).",
		}, []string{"strategy", "outcome"}),
		MatchScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Similarity score of accepted knowledge-base matches.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.7, 0.9, 1.0},
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "LLM provider errors by provider.",
		}, []string{"provider"}),
		MemoryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_failures_total",
			Help:      "Conversation history writes that failed.",
		}),
		ConnectorDrops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_reconnects_total",
			Help:      "Socket Mode sessions that ended and were reopened.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
