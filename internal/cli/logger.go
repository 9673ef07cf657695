package cli

import "go.uber.org/zap"

// agentLogger wraps zap for verbose debug output.
type agentLogger struct {
	sugared *zap.SugaredLogger
}

func newAgentLogger(globals *Globals) *agentLogger {
	if globals == nil || !globals.Verbose {
		return &agentLogger{}
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.OutputPaths = []string{"stderr"}
	logger, _ := cfg.Build()
	return &agentLogger{sugared: logger.Sugar()}
}

func (l *agentLogger) Debug(format string, args ...interface{}) {
	if l.sugared == nil {
		return
	}
	l.sugared.Debugf(format, args...)
}

// Zap returns the underlying structured logger for components that take
// one, or a nop logger when verbose is off.
func (l *agentLogger) Zap() *zap.Logger {
	if l.sugared == nil {
		return zap.NewNop()
	}
	return l.sugared.Desugar()
}
