package pdfium

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger used by this package.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: document open/close, page load/unload, render timings
//   - Info: library init and teardown
//   - Warn: native failures, leaked handles
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l.Named("pdfium"))
}

// Logger returns the logger used by this package.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
