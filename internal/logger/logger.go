// Package logger builds the JSON slog logger shared by every binary.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON logger on stdout tagged with the service name and
// the hostname.  Debug records are kept outside production.
func New(service, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, service, env)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, service, env string) *slog.Logger {
	hostname, _ := os.Hostname()

	level := slog.LevelDebug
	if strings.EqualFold(env, "production") || strings.EqualFold(env, "prod") {
		level = slog.LevelInfo
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With(
		slog.String("service", service),
		slog.String("hostname", hostname),
	)
}
