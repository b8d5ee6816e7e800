package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/malariainfo/internal"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout bounds a request. The deadline is attached to the request context,
// so backend and translation calls made with the Context are cancelled too.
// The handler's response is buffered and sent once it returns in time. If the
// deadline passes first, a *TimeoutError goes to the error handler and later
// writes from the handler fail with http.ErrHandlerTimeout. WebSocket
// upgrades are exempt.
func Timeout(timeout time.Duration) internal.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if isWebSocketUpgrade(c) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			c.SetContext(ctx)

			tw := newTimeoutWriter()
			inner := internal.SwapResponse(c, tw)

			done := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						// Recover only sees panics on its own goroutine.
						tw.abandon()
						stack := make([]byte, DefaultStackSize)
						stack = stack[:runtime.Stack(stack, false)]
						inner.LogError("panic recovered", "panic", r, "path", inner.Request().URL.Path)
						done <- &PanicError{Value: r, Stack: stack}
					}
				}()
				done <- next(inner)
			}()

			select {
			case err := <-done:
				tw.commit(c.Response())
				return err
			case <-ctx.Done():
				tw.abandon()
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", timeout.String(), "path", c.Request().URL.Path)
					return &TimeoutError{Duration: timeout}
				}
				return ctx.Err()
			}
		}
	}
}

func isWebSocketUpgrade(c internal.Context) bool {
	return strings.EqualFold(c.Header("Upgrade"), "websocket")
}

// timeoutWriter holds a handler's response until the handler returns.
// The header map is only touched by the handler goroutine before commit.
type timeoutWriter struct {
	header   http.Header
	buf      bytes.Buffer
	mu       sync.Mutex
	code     int
	timedOut bool
}

func newTimeoutWriter() *timeoutWriter {
	return &timeoutWriter{header: make(http.Header)}
}

func (w *timeoutWriter) Header() http.Header { return w.header }

func (w *timeoutWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.code != 0 {
		return
	}
	w.code = code
}

func (w *timeoutWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.buf.Write(b)
}

func (w *timeoutWriter) abandon() {
	w.mu.Lock()
	w.timedOut = true
	w.mu.Unlock()
}

// commit copies the buffered response to dst unless it was abandoned. Headers are copied even when
// nothing was written, so cookies set by a handler that returned an error
// still reach the client.
func (w *timeoutWriter) commit(dst http.ResponseWriter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}

	h := dst.Header()
	for k, v := range w.header {
		h[k] = v
	}
	if w.code == 0 {
		return
	}
	dst.WriteHeader(w.code)
	_, _ = dst.Write(w.buf.Bytes())
}
