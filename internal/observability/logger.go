package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON on stdout, debug level in dev,
// with trace and actor attributes pulled from the record's context.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewContextHandler(handler))
}
