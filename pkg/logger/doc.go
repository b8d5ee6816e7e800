// Package logger builds the application's slog logger.
//
// Records are written as JSON. Context extractors add request-scoped
// attributes such as the request id or the resolved locale on every call:
//
//	log, flush := logger.New(logger.Config{
//		Level:     slog.LevelInfo,
//		SentryDSN: cfg.SentryDSN,
//	}, logger.StringExtractor("request_id", requestIDKey{}))
//	defer flush(ctx)
//
// With a Sentry DSN, warnings and errors are forwarded to Sentry as well.
// An empty DSN or a failed Sentry init leaves plain JSON logging in place.
//
// NewNope returns a discarding logger for packages that were given none.
package logger
