package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/handlers"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
)

func TestDocumentsAPI(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		w := env.get("/api/documents")
		require.Equal(t, http.StatusOK, w.Code)
		require.Empty(t, w.Header().Get("Content-Language"), "api paths are not localized")

		list := decodeBody[handlers.DocumentList](t, w)
		require.Len(t, list.Documents, 3)
	})

	t.Run("list filtered by language", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		list := decodeBody[handlers.DocumentList](t, env.get("/api/documents?language=yo"))
		require.Len(t, list.Documents, 1)
		require.Equal(t, "2", list.Documents[0].ID)
	})

	t.Run("show and missing", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		d := decodeBody[backend.Document](t, env.get("/api/documents/1"))
		require.Equal(t, "Bed nets guide", d.Title)

		w := env.get("/api/documents/nope")
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody[handlers.ErrorResponse](t, w)
		require.Equal(t, "not_found", body.Error.Code)
	})

	t.Run("backend down is a bad gateway", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		env.backend.setDown(true)
		w := env.get("/api/documents")
		require.Equal(t, http.StatusBadGateway, w.Code)
		body := decodeBody[handlers.ErrorResponse](t, w)
		require.Equal(t, "backend_unavailable", body.Error.Code)
	})

	t.Run("writes require the auth cookie", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		w := env.sendJSON(http.MethodDelete, "/api/documents/1", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.False(t, env.backend.called("DELETE /documents/1"))
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		w := env.sendJSON(http.MethodPut, "/api/documents/3", `{"title":"New poster","language":"en"}`, adminCookies()...)
		require.Equal(t, http.StatusOK, w.Code)
		d := decodeBody[backend.Document](t, w)
		require.Equal(t, "New poster", d.Title)
	})

	t.Run("update with invalid json", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		w := env.sendJSON(http.MethodPut, "/api/documents/3", `{"title":`, adminCookies()...)
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody[handlers.ErrorResponse](t, w)
		require.Equal(t, "invalid_json", body.Error.Code)
		require.Equal(t, "The request body is not valid JSON.", body.Error.Message)
	})

	t.Run("stale token is passed through as 401", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		stale := &http.Cookie{Name: backend.AuthCookie, Value: "expired"}
		w := env.sendJSON(http.MethodDelete, "/api/documents/1", "", stale)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.True(t, env.backend.called("DELETE /documents/1"))
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t, sampleDocs()...)
		w := env.sendJSON(http.MethodDelete, "/api/documents/1", "", adminCookies()...)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("upload", func(t *testing.T) {
		t.Parallel()

		env := newEnv(t)
		req := uploadRequest(t, "/api/documents", map[string]string{"title": "Leaflet"}, "leaflet.txt", []byte("plain text"))
		w := env.serve(req, adminCookies()...)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		d := decodeBody[backend.Document](t, w)
		require.Equal(t, "new", d.ID)
	})
}
