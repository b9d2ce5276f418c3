package telemetry

import (
	"go.uber.org/zap"
)

// NewZapLogger builds the Logger interface directly from a
// zap.SugaredLogger, whose Debugw/Infow/Warnw/Errorw methods already match
// this package's Logger shape — no adapter struct is needed, only a type
// constraint that the returned value satisfies it.
func NewZapLogger(base *zap.Logger) Logger {
	return base.Sugar()
}

// NewProductionLogger builds a zap production logger (JSON encoding,
// info level and above, caller/stacktrace on error) and wraps it as a
// telemetry.Logger.
func NewProductionLogger() (Logger, func() error, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, nil, err
	}
	return NewZapLogger(base), base.Sync, nil
}

// NewDevelopmentLogger builds a zap development logger (console encoding,
// debug level, stack traces on warn+) and wraps it as a telemetry.Logger.
func NewDevelopmentLogger() (Logger, func() error, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	return NewZapLogger(base), base.Sync, nil
}
