package recurrence

import (
	"log/slog"

	"github.com/katalvlaran/recurrence/internal/logging"
)

// SetLogger configures the logger for recurrence and all its sub-packages.
// By default nothing is logged. Pass nil to restore silence.
//
// SetLogger is safe for concurrent use.
//
// Example:
//
//	recurrence.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.L()
}
