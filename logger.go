package scatter

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/scatter/internal/render"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely,
// making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger for scatter and its sub-packages.
// By default, scatter produces no log output. Pass nil to restore the
// default silent behavior.
//
// Log levels used by scatter:
//   - [slog.LevelDebug]: internal diagnostics (buffer sizes, grid stats)
//   - [slog.LevelInfo]: lifecycle events (GPU adapter selected)
//   - [slog.LevelWarn]: non-fatal issues (frame render errors)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)

	// Propagate so the GPU renderer shares the same sink.
	render.SetLogger(l)
}

// Logger returns the current logger used by scatter. Sub-packages call
// this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
