package telemetry

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics by lazily registering a
// CounterVec/HistogramVec/GaugeVec per metric name the first time it is
// observed, keyed by the label names of that first call. Every subsequent
// call for the same name must pass the same label set — mirroring the
// prometheus client's own requirement that a Vec's label names are fixed
// at construction.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewPrometheusMetrics builds a Metrics implementation registered against
// reg (pass prometheus.DefaultRegisterer for the global registry, or a
// prometheus.NewRegistry() for isolated tests).
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	return &PrometheusMetrics{
		registerer: reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sanitizeMetricName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func (m *PrometheusMetrics) IncCounter(name string, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: sanitizeMetricName(name),
			Help: name,
		}, labelNames(labels))
		m.registerer.MustRegister(vec)
		m.counters[name] = vec
	}
	vec.With(labels).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, labels map[string]string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    sanitizeMetricName(name),
			Help:    name,
			Buckets: prometheus.DefBuckets,
		}, labelNames(labels))
		m.registerer.MustRegister(vec)
		m.histograms[name] = vec
	}
	vec.With(labels).Observe(value)
}

func (m *PrometheusMetrics) SetGauge(name string, labels map[string]string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: sanitizeMetricName(name),
			Help: name,
		}, labelNames(labels))
		m.registerer.MustRegister(vec)
		m.gauges[name] = vec
	}
	vec.With(labels).Set(value)
}
