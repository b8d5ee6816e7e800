package internal_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/health"
)

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

// requestVia serves req through an App with a single catch-all route that
// hands its Context to fn.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	h := routesFunc(func(r internal.Router) {
		r.GET("/*", func(c internal.Context) error {
			fn(c)
			return nil
		})
		r.POST("/*", func(c internal.Context) error {
			fn(c)
			return nil
		})
	})
	app := internal.New(append(opts, internal.WithHandlers(h))...)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func TestApp_GlobalMiddlewareRewritesBeforeRouting(t *testing.T) {
	t.Parallel()

	rewrite := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.Request().URL.Path == "/about" {
				c.Rewrite("/en/about")
			}
			return next(c)
		}
	}
	h := routesFunc(func(r internal.Router) {
		r.GET("/{locale}/about", func(c internal.Context) error {
			return c.String(http.StatusOK, "about:"+c.Param("locale"))
		})
	})
	app := internal.New(internal.WithMiddleware(rewrite), internal.WithHandlers(h))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "about:en", w.Body.String())
}

func TestApp_MiddlewareValuesReachHandler(t *testing.T) {
	t.Parallel()

	type key struct{}
	mw := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			c.Set(key{}, "v")
			return next(c)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var got string
	requestVia(t, req, []internal.Option{internal.WithMiddleware(mw)}, func(c internal.Context) {
		got = internal.ContextValue[string](c, key{})
	})
	require.Equal(t, "v", got)
}

func TestApp_RouteMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	named := func(name string) internal.Middleware {
		return func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}
	h := routesFunc(func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			order = append(order, "handler")
			return c.NoContent(http.StatusNoContent)
		}, named("first"), named("second"))
	})
	app := internal.New(internal.WithHandlers(h))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestApp_ErrorHandling(t *testing.T) {
	t.Parallel()

	failing := routesFunc(func(r internal.Router) {
		r.GET("/missing", func(c internal.Context) error {
			return internal.ErrNotFound("errors.not_found")
		})
		r.GET("/boom", func(c internal.Context) error {
			return errors.New("boom")
		})
		r.GET("/late", func(c internal.Context) error {
			_ = c.String(http.StatusOK, "partial")
			return errors.New("late")
		})
	})

	t.Run("default handler uses status of HTTPError", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithHandlers(failing))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("default handler falls back to 500", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithHandlers(failing))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("custom handler", func(t *testing.T) {
		t.Parallel()
		app := internal.New(
			internal.WithHandlers(failing),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				return c.String(http.StatusTeapot, err.Error())
			}),
		)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.Equal(t, http.StatusTeapot, w.Code)
		require.Equal(t, "boom", w.Body.String())
	})

	t.Run("written response is kept", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithHandlers(failing))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "partial", w.Body.String())
	})

	t.Run("not found handler", func(t *testing.T) {
		t.Parallel()
		app := internal.New(internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusNotFound, "nope")
		}))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nothing", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "nope", w.Body.String())
	})
}

func TestApp_HealthChecks(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithHealthChecks(health.Checks{
		"translations": func(context.Context) error { return errors.New("down") },
	}))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"public/app.css": {Data: []byte("body{}")},
	}
	app := internal.New(internal.WithStaticFiles("/static/", fsys, "public"))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_Run(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var stopped bool

	app := internal.New()
	done := make(chan error, 1)
	go func() {
		done <- app.Run(addr,
			internal.WithContext(ctx),
			internal.StartupHook(func(context.Context) error {
				close(started)
				return nil
			}),
			internal.ShutdownHook(func(context.Context) error {
				stopped = true
				return nil
			}),
		)
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		require.True(t, stopped)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_RunStartupHookFails(t *testing.T) {
	t.Parallel()

	app := internal.New()
	err := app.Run("127.0.0.1:0", internal.StartupHook(func(context.Context) error {
		return errors.New("no translations")
	}))
	require.ErrorIs(t, err, internal.ErrStartup)
}
