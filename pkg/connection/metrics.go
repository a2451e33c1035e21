package connection

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt outcomes recorded by Metrics.
const (
	OutcomeOK         = "ok"
	OutcomeAPIStatus  = "api_status"
	OutcomeMalformed  = "malformed"
	OutcomeHTTPStatus = "http_status"
	OutcomeTransport  = "transport"
	OutcomeCanceled   = "canceled"
)

const (
	metricsNamespace = "rubika"
	metricsSubsystem = "connection"
	labelEndpoint    = "endpoint"
	labelOutcome     = "outcome"
)

// Metrics holds the Prometheus collectors a Connection reports to.
// A nil *Metrics records nothing.
type Metrics struct {
	attempts  *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "attempts_total",
			Help:      "HTTP attempts issued against the Bot API, by endpoint and outcome.",
		}, []string{labelEndpoint, labelOutcome}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "retries_exhausted_total",
			Help:      "Requests that failed after using every attempt.",
		}, []string{labelEndpoint}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Wall-clock time of a request including retries and backoff.",
			Buckets:   prometheus.DefBuckets,
		}, []string{labelEndpoint}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.attempts, m.exhausted, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func (m *Metrics) observeAttempt(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) observeExhausted(endpoint string) {
	if m == nil {
		return
	}
	m.exhausted.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) observeDuration(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(endpoint).Observe(d.Seconds())
}
