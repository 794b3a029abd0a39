package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the payment and submission counters.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeInvalid   = "invalid"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
	OutcomeAbandoned = "abandoned"
)

// PipelineMetrics records order pipeline activity. A nil receiver or one built
// without a registerer is a no-op.
type PipelineMetrics struct {
	paymentAttempts    *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
	resyncs            *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	paymentAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Payment attempts by outcome.",
	}, []string{"outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order backend submissions by outcome.",
	}, []string{"outcome"})
	submissionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submission_duration_seconds",
		Help:    "Latency of order backend submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	resyncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "client_store_resyncs_total",
		Help: "In-memory views refreshed after another writer changed a store key.",
	}, []string{"key"})
	reg.MustRegister(paymentAttempts, submissions, submissionDuration, resyncs)
	return &PipelineMetrics{
		paymentAttempts:    paymentAttempts,
		submissions:        submissions,
		submissionDuration: submissionDuration,
		resyncs:            resyncs,
	}
}

// IncPaymentAttempt counts a settled payment attempt.
func (p *PipelineMetrics) IncPaymentAttempt(outcome string) {
	if p == nil || p.paymentAttempts == nil {
		return
	}
	p.paymentAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSubmission counts a submission and records its latency.
func (p *PipelineMetrics) ObserveSubmission(outcome string, duration time.Duration) {
	if p == nil || p.submissions == nil {
		return
	}
	label := normalizeLabel(outcome)
	p.submissions.WithLabelValues(label).Inc()
	p.submissionDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncResync counts an external-change resync of key.
func (p *PipelineMetrics) IncResync(key string) {
	if p == nil || p.resyncs == nil {
		return
	}
	p.resyncs.WithLabelValues(normalizeLabel(key)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
