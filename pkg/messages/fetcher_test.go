package messages_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/translations/yo":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"nav":{"home":"Ile"}}`))
		case "/translations/en":
			_, _ = w.Write([]byte(`["not","an","object"]`))
		case "/translations/xx":
			_, _ = w.Write([]byte(`null`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	f := messages.NewHTTPFetcher(srv.URL+"/", messages.WithHTTPClient(srv.Client()))

	t.Run("builds url", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, srv.URL+"/translations/yo", f.URL("yo"))
	})

	t.Run("decodes object", func(t *testing.T) {
		t.Parallel()

		b, err := f.Fetch(ctx, "yo")
		require.NoError(t, err)
		require.Equal(t, "Ile", b.Lookup("nav.home"))
	})

	t.Run("non-2xx", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(ctx, "fr")
		require.ErrorIs(t, err, messages.ErrUnexpectedStatus)
	})

	t.Run("non-object body", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(ctx, "en")
		require.ErrorIs(t, err, messages.ErrDecode)

		_, err = f.Fetch(ctx, "xx")
		require.ErrorIs(t, err, messages.ErrDecode)
	})

	t.Run("empty locale", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(ctx, "")
		require.ErrorIs(t, err, messages.ErrInvalidLocale)
	})

	t.Run("ping", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, f.Ping("yo")(ctx))
		require.Error(t, f.Ping("fr")(ctx))
	})
}

func TestHTTPFetcher_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := messages.NewHTTPFetcher(url).Fetch(context.Background(), "en")
	require.Error(t, err)
}

func TestFSFetcher(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"en.json":  {Data: []byte(`{"nav":{"home":"Home"}}`)},
		"yo.yaml":  {Data: []byte("nav:\n  home: Ile\n")},
		"bad.json": {Data: []byte(`{`)},
	}
	f := messages.NewFSFetcher(fsys)
	ctx := context.Background()

	b, err := f.Fetch(ctx, "en")
	require.NoError(t, err)
	require.Equal(t, "Home", b.Lookup("nav.home"))

	b, err = f.Fetch(ctx, "yo")
	require.NoError(t, err)
	require.Equal(t, "Ile", b.Lookup("nav.home"))

	_, err = f.Fetch(ctx, "fr")
	require.ErrorIs(t, err, messages.ErrNotFound)

	_, err = f.Fetch(ctx, "bad")
	require.ErrorIs(t, err, messages.ErrDecode)

	_, err = f.Fetch(ctx, "../en")
	require.ErrorIs(t, err, messages.ErrInvalidLocale)
}
