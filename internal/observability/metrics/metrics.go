package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics exposes counters/histograms for in-call function dispatch.
type DispatchMetrics struct {
	invocationsTotal *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
	auditFailures    prometheus.Counter
}

func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	m := &DispatchMetrics{
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "dispatch",
			Name:      "invocations_total",
			Help:      "Total in-call function invocations",
		}, []string{"function", "status"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "dispatch",
			Name:      "latency_seconds",
			Help:      "Latency of in-call function handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "dispatch",
			Name:      "audit_failures_total",
			Help:      "Audit writes that did not complete",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.invocationsTotal, m.dispatchLatency, m.auditFailures)
	return m
}

func (m *DispatchMetrics) ObserveInvocation(function, status string) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(function, status).Inc()
}

func (m *DispatchMetrics) ObserveLatency(function string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(function).Observe(seconds)
}

func (m *DispatchMetrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}
