package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeStatus      = "status_error"
	outcomeNetwork     = "network_error"
	outcomeDecode      = "decode_error"
	outcomeCircuitOpen = "circuit_open"
	outcomeCanceled    = "canceled"
)

// Metrics счётчики запросов к апстримам. Nil-значение допустимо и ничего
// не пишет.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	throttle *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memescan",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream requests by source and outcome.",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memescan",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		throttle: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memescan",
			Subsystem: "upstream",
			Name:      "throttle_wait_seconds",
			Help:      "Time spent waiting for the per-source rate gate.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 4, 8},
		}, []string{"source"}),
	}

	reg.MustRegister(m.requests, m.duration, m.throttle)

	return m
}

func (m *Metrics) countRequest(source, outcome string) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) observeDuration(source string, d time.Duration) {
	if m == nil {
		return
	}

	m.duration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) observeThrottle(source string, d time.Duration) {
	if m == nil {
		return
	}

	m.throttle.WithLabelValues(source).Observe(d.Seconds())
}

func outcomeFor(err error) string {
	var se *StatusError

	switch {
	case errors.As(err, &se):
		return outcomeStatus
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeNetwork
	}
}
