package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records anomalies the cart store absorbs instead of surfacing.
type CartMetrics struct {
	unresolvedPrices *prometheus.CounterVec
	skippedLines     prometheus.Counter
	persistFailures  *prometheus.CounterVec
}

// NewCartMetrics registers the cart anomaly metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	unresolvedPrices := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_unresolved_prices",
		Help: "Listings added to the cart with no recognizable price field.",
	}, []string{"category"})
	skippedLines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_skipped_total_lines",
		Help: "Line items excluded from the subtotal because their values did not parse.",
	})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures",
		Help: "Best-effort durable writes that returned an error.",
	}, []string{"key"})
	reg.MustRegister(unresolvedPrices, skippedLines, persistFailures)
	return &CartMetrics{
		unresolvedPrices: unresolvedPrices,
		skippedLines:     skippedLines,
		persistFailures:  persistFailures,
	}
}

// IncUnresolvedPrice counts an add whose price defaulted to zero.
func (c *CartMetrics) IncUnresolvedPrice(category string) {
	if c == nil || c.unresolvedPrices == nil {
		return
	}
	c.unresolvedPrices.WithLabelValues(normalizeLabel(category)).Inc()
}

// IncSkippedLine counts a line dropped from the subtotal.
func (c *CartMetrics) IncSkippedLine() {
	if c == nil || c.skippedLines == nil {
		return
	}
	c.skippedLines.Inc()
}

// IncPersistFailure counts a failed durable write for the named key.
func (c *CartMetrics) IncPersistFailure(key string) {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.WithLabelValues(normalizeLabel(key)).Inc()
}

// CheckoutMetrics tracks order submission delivery.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_submission_duration_seconds",
		Help:    "Wall time of order submission delivery including retries.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(submissions, duration)
	return &CheckoutMetrics{
		submissions: submissions,
		duration:    duration,
	}
}

// IncSubmission counts a submission attempt outcome.
func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSubmissionDuration records how long delivery took.
func (c *CheckoutMetrics) ObserveSubmissionDuration(duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
