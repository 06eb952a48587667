package calculation

// Logger is a minimal logging interface for the calculation engine.
// *logrus.Logger and *logrus.Entry satisfy it; the default is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no output.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// prefixedLogger tags every message with a scenario name.
type prefixedLogger struct {
	prefix string
	next   Logger
}

func withScenario(l Logger, name string) Logger {
	if _, ok := l.(NopLogger); ok || name == "" {
		return l
	}
	return prefixedLogger{prefix: "[" + name + "] ", next: l}
}

func (p prefixedLogger) Debugf(format string, args ...any) { p.next.Debugf(p.prefix+format, args...) }
func (p prefixedLogger) Infof(format string, args ...any)  { p.next.Infof(p.prefix+format, args...) }
func (p prefixedLogger) Warnf(format string, args ...any)  { p.next.Warnf(p.prefix+format, args...) }
func (p prefixedLogger) Errorf(format string, args ...any) { p.next.Errorf(p.prefix+format, args...) }
