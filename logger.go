package tableau

import "go.uber.org/zap"

// log is the package logger. It discards everything until SetLogger is
// called.
var log = zap.NewNop()

// SetLogger installs the logger used by compositions and the reconciler.
// Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		log = zap.NewNop()
		return
	}
	log = l.Named("tableau")
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return log
}
