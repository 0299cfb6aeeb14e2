package limiter

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder bridges the MetricsRecorder interface onto a Prometheus
// registry. Series names other than the ones the limiter emits are ignored.
type PrometheusRecorder struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_calls_total",
			Help: "Admission decisions made by the rate limiter.",
		}, []string{"namespace", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ratelimit_decision_seconds",
			Help:    "Latency of rate limiter admission decisions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"namespace", "status"}),
	}
	reg.MustRegister(r.calls, r.latency)
	return r
}

func (r *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {
	if name != "ratelimit.call" {
		return
	}
	r.calls.With(labels(tags)).Add(value)
}

func (r *PrometheusRecorder) Observe(name string, value float64, tags map[string]string) {
	if name != "ratelimit.latency" {
		return
	}
	r.latency.With(labels(tags)).Observe(value)
}

func labels(tags map[string]string) prometheus.Labels {
	return prometheus.Labels{
		"namespace": tags["namespace"],
		"status":    tags["status"],
	}
}
