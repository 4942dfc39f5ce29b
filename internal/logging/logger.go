package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the process logger: a colorized tint handler for local
// development, JSON for everything else.
func New(appEnv string, level slog.Level, serviceName string) *slog.Logger {
	if appEnv == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("service", serviceName)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With(
		"service", serviceName,
		"env", appEnv,
	)
}
