// Package log builds slog loggers and the attributes the engine logs with.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New creates a logger writing to w. Format is "text" or "json". The
// "error" key is standardized to "err".
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func Scenario(title string) slog.Attr {
	return slog.String("scenario", title)
}

func Step(title string) slog.Attr {
	return slog.String("step", title)
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

func ExecutionID(id string) slog.Attr {
	return slog.String("execution_id", id)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
