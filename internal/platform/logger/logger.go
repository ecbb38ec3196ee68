// Package logger builds the two slog loggers the service uses: the
// application log, and the secure channel ("tjenestekall") that alone may
// carry person identifiers and raw token contents.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the JSON application logger.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// NewSecure returns the secure-channel logger. On the platform it writes to
// the secure-log volume, which is shipped to a restricted index; outside it
// falls back to stdout so local development still sees the lines.
func NewSecure() *slog.Logger {
	var out io.Writer = os.Stdout
	if f, err := os.OpenFile("/secure-logs/secure.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		out = f
	}
	return slog.New(slog.NewJSONHandler(out, nil)).With("logger", "tjenestekall")
}
