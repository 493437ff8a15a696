package harness

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg-harness/device"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for the harness and all its sub-packages.
// By default the harness produces no log output.
//
// Pass nil to disable logging again.
//
// Log levels used:
//   - [slog.LevelDebug]: context switches, dispatch resolution, skipped presents
//   - [slog.LevelInfo]: backend adapter selected, target results
//   - [slog.LevelWarn]: over-release, cleanup and restore failures
//
// Example:
//
//	harness.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// device cannot import harness, so it keeps its own copy.
	device.SetLogger(l)
}

// Logger returns the current logger. Backend adapters call it to share the
// harness configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
