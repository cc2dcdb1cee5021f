package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace overrides the "kinetic" namespace. Empty values are ignored.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "pipeline" subsystem. Empty values are ignored.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the buckets of the stage and job latency
// histograms, in milliseconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithMetricsEnabled turns the package level recorders on or off for this
// manager.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithPrometheusRegistry registers the collectors on registry instead of the
// default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
