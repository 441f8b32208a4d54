package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes of a send.
const (
	OutcomeCompleted = "completed"
	OutcomeApology   = "apology"
	OutcomeDisabled  = "disabled"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus collectors for message exchange.
type Metrics struct {
	Sends            *prometheus.CounterVec
	SendLatency      prometheus.Histogram
	ProviderFailures *prometheus.CounterVec
	Tokens           *prometheus.CounterVec
}

// NewMetrics registers the chat collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Sends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_chat_sends_total",
			Help: "Messages sent, by outcome.",
		}, []string{"outcome"}),

		SendLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agent_chat_send_duration_seconds",
			Help:    "Time to answer a message, including the provider call.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),

		ProviderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_chat_provider_failures_total",
			Help: "Provider calls that produced no completion, by provider and reason.",
		}, []string{"provider", "reason"}),

		Tokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_chat_tokens_total",
			Help: "Tokens persisted, by message role.",
		}, []string{"role"}),
	}
}
