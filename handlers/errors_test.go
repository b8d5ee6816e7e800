package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/data"
	"github.com/dmitrymomot/malariainfo/handlers"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

type routesFunc func(r malariainfo.Router)

func (f routesFunc) Routes(r malariainfo.Router) { f(r) }

func errorApp(t *testing.T) *malariainfo.App {
	t.Helper()

	resolver, err := locale.New(locale.WithLocales("en", "yo"), locale.WithDefault("en"))
	require.NoError(t, err)
	loader := messages.NewLoader(messages.NewFSFetcher(data.Translations()))
	t.Cleanup(func() { _ = loader.Close() })
	site := handlers.NewSite(resolver, loader)

	fail := func(err error) malariainfo.HandlerFunc {
		return func(malariainfo.Context) error { return err }
	}
	return malariainfo.New(
		malariainfo.WithMiddleware(
			middlewares.Recover(),
			middlewares.Locale(resolver),
			middlewares.Messages(loader),
		),
		malariainfo.WithErrorHandler(handlers.ErrorHandler(site)),
		malariainfo.WithNotFoundHandler(handlers.NotFound),
		malariainfo.WithHandlers(routesFunc(func(r malariainfo.Router) {
			r.GET("/{locale}/panic", func(malariainfo.Context) error { panic("boom") })
			r.GET("/{locale}/slow", fail(fmt.Errorf("render: %w", context.DeadlineExceeded)))
			r.GET("/{locale}/gone", fail(malariainfo.ErrNotFound("errors.not_found")))
			r.GET("/api/panic", func(malariainfo.Context) error { panic("boom") })
			r.GET("/api/plain", fail(errors.New("database on fire")))
			r.GET("/api/bad-gateway", fail(malariainfo.ErrBadGateway("errors.backend")))
		})),
	)
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	app := errorApp(t)
	serve := func(target string, header ...string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		for i := 0; i+1 < len(header); i += 2 {
			req.Header.Set(header[i], header[i+1])
		}
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		return w
	}

	t.Run("panic renders a localized page", func(t *testing.T) {
		t.Parallel()

		w := serve("/en/panic")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
		require.Contains(t, w.Body.String(), "Something went wrong on our side.")
	})

	t.Run("deadline is a gateway timeout", func(t *testing.T) {
		t.Parallel()

		w := serve("/en/slow")
		require.Equal(t, http.StatusGatewayTimeout, w.Code)
		require.Contains(t, w.Body.String(), "The request took too long.")
	})

	t.Run("http error keeps its status", func(t *testing.T) {
		t.Parallel()

		w := serve("/yo/gone")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Contains(t, w.Body.String(), `<html lang="yo"`)
	})

	t.Run("json clients get json on pages", func(t *testing.T) {
		t.Parallel()

		w := serve("/en/gone", "Accept", "application/json")
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody[handlers.ErrorResponse](t, w)
		require.Equal(t, "not_found", body.Error.Code)
		require.Equal(t, "We could not find that page.", body.Error.Message)
	})

	t.Run("api panic", func(t *testing.T) {
		t.Parallel()

		w := serve("/api/panic")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, "internal_error", decodeBody[handlers.ErrorResponse](t, w).Error.Code)
	})

	t.Run("api error is translated by preference", func(t *testing.T) {
		t.Parallel()

		w := serve("/api/plain", "Accept-Language", "yo")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody[handlers.ErrorResponse](t, w)
		require.Equal(t, "internal_error", body.Error.Code)
		require.NotEqual(t, "errors.generic", body.Error.Message)
		require.NotContains(t, body.Error.Message, "fire", "causes are never shown")
	})

	t.Run("derived error code", func(t *testing.T) {
		t.Parallel()

		w := serve("/api/bad-gateway")
		require.Equal(t, http.StatusBadGateway, w.Code)
		require.Equal(t, "bad_gateway", decodeBody[handlers.ErrorResponse](t, w).Error.Code)
	})

	t.Run("unmatched api route", func(t *testing.T) {
		t.Parallel()

		w := serve("/api/nothing/here")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "not_found", decodeBody[handlers.ErrorResponse](t, w).Error.Code)
	})
}
