// Package telemetry provides the logging and metrics sink threaded through
// the ingestion core. Per the design note on shared state, no component
// reaches for a package-level logger or registry; everything is passed a
// Context explicitly.
package telemetry

// Logger is the subset of structured-logging calls the core needs. The
// zap-backed implementation in logger.go satisfies it directly since zap's
// SugaredLogger already exposes this shape.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Metrics is the subset of instrumentation the core emits. Counters are
// named once at construction and incremented with label values at the call
// site, mirroring the prometheus client's Vec pattern.
type Metrics interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, labels map[string]string, value float64)
	SetGauge(name string, labels map[string]string, value float64)
}

// Context bundles the ambient collaborators a call into the core needs,
// replacing module-level mutable logger/metrics state.
type Context interface {
	Logger() Logger
	Metrics() Metrics
}

// Background returns a Context with a no-op logger and metrics sink, for
// tests and for callers that have not wired telemetry yet.
func Background() Context {
	return noopContext{}
}

type noopContext struct{}

func (noopContext) Logger() Logger   { return noopLogger{} }
func (noopContext) Metrics() Metrics { return noopMetrics{} }

type noopLogger struct{}

func (noopLogger) Debugw(string, ...interface{}) {}
func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Warnw(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, map[string]string)                  {}
func (noopMetrics) ObserveHistogram(string, map[string]string, float64) {}
func (noopMetrics) SetGauge(string, map[string]string, float64)          {}
