package telemetry

// runtimeContext bundles a concrete Logger/Metrics pair, the wiring a
// running node uses in place of Background()'s no-op pair.
type runtimeContext struct {
	logger  Logger
	metrics Metrics
}

// NewContext bundles logger and metrics into a Context.
func NewContext(logger Logger, metrics Metrics) Context {
	return runtimeContext{logger: logger, metrics: metrics}
}

func (c runtimeContext) Logger() Logger   { return c.logger }
func (c runtimeContext) Metrics() Metrics { return c.metrics }
