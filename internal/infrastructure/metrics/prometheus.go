package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeAcked     = "acked"
	OutcomeDiscarded = "discarded"
	OutcomeRetained  = "retained"
)

var (
	MessagesReceivedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_messages_received_total",
		Help: "Total number of messages received from inbound queues",
	}, []string{"queue"})

	MessagesHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_messages_handled_total",
		Help: "Total number of handled messages, by outcome",
	}, []string{"queue", "outcome"})

	MessageHandlingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orchestrator_message_handling_duration_seconds",
		Help:    "Duration of a single message handling",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"queue"})

	PollErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_poll_errors_total",
		Help: "Total number of failed queue polls",
	}, []string{"queue"})

	AckErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_ack_errors_total",
		Help: "Total number of failed acknowledgements",
	}, []string{"queue"})

	MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_messages_published_total",
		Help: "Total number of outbound messages, by result",
	}, []string{"queue", "result"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orchestrator_queue_depth",
		Help: "Approximate number of messages waiting in an inbound queue",
	}, []string{"queue"})

	VideoTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_video_transitions_total",
		Help: "Total number of persisted video status changes, by target status",
	}, []string{"status"})
)
