package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
)

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

func newResolver(t *testing.T) *locale.Resolver {
	t.Helper()
	r, err := locale.New(locale.WithLocales("en", "yo"), locale.WithDefault("en"))
	require.NoError(t, err)
	return r
}

// serve runs req through an app whose every route calls fn.
func serve(t *testing.T, req *http.Request, opts []internal.Option, fn internal.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	h := routesFunc(func(r internal.Router) {
		r.GET("/*", fn)
		r.POST("/*", fn)
	})
	app := internal.New(append(opts, internal.WithHandlers(h))...)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
