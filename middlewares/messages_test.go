package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

type stubLoader struct {
	mu      sync.Mutex
	bundles map[string]messages.Bundle
	calls   []string
}

func (s *stubLoader) Load(_ context.Context, l string) messages.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, l)
	return s.bundles[l]
}

func TestMessages(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{bundles: map[string]messages.Bundle{
		"yo": {"nav": map[string]any{"home": "Ilé"}},
	}}
	opts := []internal.Option{internal.WithMiddleware(
		middlewares.Locale(newResolver(t)),
		middlewares.Messages(loader),
	)}

	t.Run("bundle of the path locale", func(t *testing.T) {
		var got string
		w := serve(t, httptest.NewRequest(http.MethodGet, "/yo/", nil), opts, func(c internal.Context) error {
			got = c.T("nav.home")
			return c.NoContent(http.StatusOK)
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Ilé", got)
	})

	t.Run("missing bundle shows keys", func(t *testing.T) {
		var got string
		serve(t, httptest.NewRequest(http.MethodGet, "/en/", nil), opts, func(c internal.Context) error {
			got = c.T("nav.home")
			return nil
		})
		require.Equal(t, "nav.home", got)
	})

	t.Run("excluded paths skip loading", func(t *testing.T) {
		loader.mu.Lock()
		before := len(loader.calls)
		loader.mu.Unlock()

		serve(t, httptest.NewRequest(http.MethodGet, "/api/translations/en", nil), opts, func(c internal.Context) error {
			return nil
		})

		loader.mu.Lock()
		defer loader.mu.Unlock()
		require.Len(t, loader.calls, before)
	})
}
