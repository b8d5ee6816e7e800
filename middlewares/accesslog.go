package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/malariainfo/internal"
)

// AccessLog logs one line per request once the response is complete.
// Server errors log at error level, client errors at warn.
func AccessLog() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			method, path := c.Request().Method, c.Request().URL.Path

			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			c.Logger().Log(c, level, "request",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			)
			return err
		}
	}
}
