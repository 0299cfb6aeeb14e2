package limiter

// MetricsRecorder receives counters and timings emitted by the limiter.
//
// The limiter reports two series: "ratelimit.call" (a counter incremented per
// admission decision) and "ratelimit.latency" (the decision latency in
// seconds). Both carry "namespace" and "status" tags.
type MetricsRecorder interface {
	Add(name string, value float64, tags map[string]string)
	Observe(name string, value float64, tags map[string]string)
}

// NoOpMetricsRecorder is a placeholder that does nothing.
// It ensures we never have to check 'if r.recorder != nil' in our hot path.
type NoOpMetricsRecorder struct{}

func (n *NoOpMetricsRecorder) Add(name string, value float64, tags map[string]string)     {}
func (n *NoOpMetricsRecorder) Observe(name string, value float64, tags map[string]string) {}
