package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout submissions and payment dispatch outcomes.
type CheckoutMetrics struct {
	submissions      *prometheus.CounterVec
	dispatchOutcome  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions by payment method.",
	}, []string{"method"})
	outcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_dispatch_total",
		Help: "Payment dispatch outcomes by method and result.",
	}, []string{"method", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_dispatch_duration_seconds",
		Help:    "Duration of payment dispatch calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(submissions, outcome, duration)
	return &CheckoutMetrics{
		submissions:      submissions,
		dispatchOutcome:  outcome,
		dispatchDuration: duration,
	}
}

// IncSubmission counts one checkout submission for the method.
func (c *CheckoutMetrics) IncSubmission(method string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncDispatch counts one dispatch outcome ("success" / "error").
func (c *CheckoutMetrics) IncDispatch(method, outcome string) {
	if c == nil || c.dispatchOutcome == nil {
		return
	}
	c.dispatchOutcome.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// ObserveDispatchDuration records how long a dispatch call took.
func (c *CheckoutMetrics) ObserveDispatchDuration(method string, duration time.Duration) {
	if c == nil || c.dispatchDuration == nil {
		return
	}
	c.dispatchDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
