package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config describes where and how much to log.
type Config struct {
	// Output receives JSON records. Defaults to os.Stdout.
	Output io.Writer
	// SentryDSN enables Sentry fan-out when set.
	SentryDSN         string
	SentryEnvironment string
	Release           string
	Level             slog.Level
}

// Flush waits for buffered Sentry events. It is a no-op without Sentry and
// fits a shutdown hook signature.
type Flush func(ctx context.Context) error

// New builds the application logger. Records go to Output as JSON and, when a
// DSN is configured, warnings and errors are also sent to Sentry (errors
// become issues). Sentry init failures fall back to JSON only.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, Flush) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	base := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level})
	noFlush := func(context.Context) error { return nil }

	if cfg.SentryDSN == "" {
		return slog.New(WithExtractors(base, extractors...)), noFlush
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("sentry init failed, logging to stdout only", slog.String("error", err.Error()))
		return slog.New(WithExtractors(base, extractors...)), noFlush
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	flush := func(ctx context.Context) error {
		timeout := 2 * time.Second
		if dl, ok := ctx.Deadline(); ok {
			timeout = time.Until(dl)
		}
		sentry.Flush(timeout)
		return nil
	}

	return slog.New(WithExtractors(fanout{base, sentryHandler}, extractors...)), flush
}

// NewNope returns a logger that discards everything. Packages use it when
// no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
