package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk"

// Metrics groups the collectors of the pipeline. A nil *Metrics records nothing.
type Metrics struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	completions       *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	guardrailVerdicts *prometheus.CounterVec
	creditsSpent      *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	activeSessions    prometheus.Gauge
}

// NewMetrics registers every collector on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Questions processed, by outcome and domain",
			},
			[]string{"outcome", "domain"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End to end pipeline latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
			},
			[]string{"outcome"},
		),
		completions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Completion calls, by task, model and status",
			},
			[]string{"task", "model", "status"},
		),
		completionLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_latency_seconds",
				Help:      "Completion call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		guardrailVerdicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guardrail_verdicts_total",
				Help:      "Guardrail verdicts, by check and result",
			},
			[]string{"check", "result"},
		),
		creditsSpent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "credits_spent_total",
				Help:      "Credits consumed, by plan",
			},
			[]string{"plan"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "knowledge_cache_lookups_total",
				Help:      "Knowledge cache lookups, by result",
			},
			[]string{"result"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently held in memory",
			},
		),
	}
}

func (m *Metrics) ObserveRequest(outcome, domain string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome, domain).Inc()
	m.requestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveCompletion(task, model, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(task, model, status).Inc()
	m.completionLatency.WithLabelValues(task).Observe(d.Seconds())
}

func (m *Metrics) ObserveVerdict(check, result string) {
	if m == nil {
		return
	}
	m.guardrailVerdicts.WithLabelValues(check, result).Inc()
}

func (m *Metrics) AddCredits(plan string, credits float64) {
	if m == nil || credits <= 0 {
		return
	}
	m.creditsSpent.WithLabelValues(plan).Add(credits)
}

func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
