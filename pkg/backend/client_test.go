package backend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/pkg/backend"
)

func newClient(t *testing.T, h http.Handler) *backend.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := backend.NewClient(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := backend.NewClient("")
	require.ErrorIs(t, err, backend.ErrEmptyURL)

	_, err = backend.NewClient("ftp://example.com")
	require.ErrorIs(t, err, backend.ErrInvalidURL)

	_, err = backend.NewClient("not a url")
	require.ErrorIs(t, err, backend.ErrInvalidURL)

	c, err := backend.NewClient("https://api.example.com/v1/")
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/v1", c.BaseURL())
}

func TestListDocuments(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"array":    `[{"id":"1","title":"Nets"},{"_id":"2","title":"Testing"}]`,
		"envelope": `{"documents":[{"id":"1","title":"Nets"},{"_id":"2","title":"Testing"}]}`,
		"data":     `{"data":[{"id":"1","title":"Nets"},{"_id":"2","title":"Testing"}]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/documents", r.URL.Path)
				require.Equal(t, http.MethodGet, r.Method)
				_, _ = io.WriteString(w, body)
			}))

			docs, err := c.ListDocuments(context.Background())
			require.NoError(t, err)
			require.Len(t, docs, 2)
			require.Equal(t, "1", docs[0].ID)
			require.Equal(t, "2", docs[1].ID, "mongo style id")
			require.Equal(t, "Testing", docs[1].Title)
		})
	}

	t.Run("null is empty", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "null")
		}))

		docs, err := c.ListDocuments(context.Background())
		require.NoError(t, err)
		require.Empty(t, docs)
	})

	t.Run("unknown shape", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"unexpected":true}`)
		}))

		_, err := c.ListDocuments(context.Background())
		require.ErrorIs(t, err, backend.ErrDecode)
	})
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/documents/42":
			_, _ = io.WriteString(w, `{"document":{"id":"42","title":"Guide","fileUrl":"https://cdn/x.pdf"}}`)
		case "/documents/401":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"token expired"}`)
		case "/documents/500":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "boom")
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"document not found"}`)
		}
	}))
	ctx := context.Background()

	doc, err := c.GetDocument(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, "Guide", doc.Title)
	require.Equal(t, "https://cdn/x.pdf", doc.FileURL)

	_, err = c.GetDocument(ctx, "missing")
	require.ErrorIs(t, err, backend.ErrNotFound)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "document not found", apiErr.Message)

	_, err = c.GetDocument(ctx, "401")
	require.ErrorIs(t, err, backend.ErrUnauthorized)
	require.ErrorContains(t, err, "token expired")

	_, err = c.GetDocument(ctx, "500")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "boom", apiErr.Message)

	_, err = c.GetDocument(ctx, " ")
	require.ErrorIs(t, err, backend.ErrMissingID)
}

func TestUpdateAndDeleteDocument(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie(backend.AuthCookie)
		if err != nil || ck.Value != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodPut:
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in backend.DocumentInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "7", "title": in.Title, "language": in.Language})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	ctx := context.Background()

	doc, err := c.UpdateDocument(ctx, "tok", "7", backend.DocumentInput{Title: "Ìdènà", Language: "yo"})
	require.NoError(t, err)
	require.Equal(t, "Ìdènà", doc.Title)
	require.Equal(t, "yo", doc.Language)

	_, err = c.UpdateDocument(ctx, "bad", "7", backend.DocumentInput{Title: "x"})
	require.ErrorIs(t, err, backend.ErrUnauthorized)

	require.NoError(t, c.DeleteDocument(ctx, "tok", "7"))
	require.ErrorIs(t, c.DeleteDocument(ctx, "", "7"), backend.ErrUnauthorized)
}

func TestUploadDocument(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":       "new",
				"title":    r.FormValue("title"),
				"category": r.FormValue("category"),
				"fileName": fh.Filename,
				"fileType": fh.Header.Get("Content-Type"),
				"fileSize": len(data),
			},
		})
	}))

	doc, err := c.UploadDocument(context.Background(), "tok", backend.Upload{
		DocumentInput: backend.DocumentInput{Title: "Leaflet", Category: "prevention"},
		FileName:      "leaflet.pdf",
		ContentType:   "application/pdf",
		Body:          strings.NewReader("%PDF-1.4 body"),
	})
	require.NoError(t, err)
	require.Equal(t, "new", doc.ID)
	require.Equal(t, "Leaflet", doc.Title)
	require.Equal(t, "prevention", doc.Category)
	require.Equal(t, "leaflet.pdf", doc.FileName)
	require.Equal(t, "application/pdf", doc.FileType)
	require.EqualValues(t, 13, doc.FileSize)

	_, err = c.UploadDocument(context.Background(), "tok", backend.Upload{})
	require.ErrorIs(t, err, backend.ErrEmptyFile)
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))
	return r.MultipartForm.File["file"][0]
}

func TestOpenUpload(t *testing.T) {
	t.Parallel()

	in := backend.DocumentInput{Title: "Leaflet"}

	t.Run("pdf accepted", func(t *testing.T) {
		t.Parallel()

		up, closeFn, err := backend.OpenUpload(fileHeader(t, "a.pdf", []byte("%PDF-1.7\nrest")), in, 0)
		require.NoError(t, err)
		defer closeFn()

		require.Equal(t, "application/pdf", up.ContentType)
		require.Equal(t, "a.pdf", up.FileName)
		require.Equal(t, "Leaflet", up.Title)

		data, err := io.ReadAll(up.Body)
		require.NoError(t, err)
		require.Equal(t, "%PDF-1.7\nrest", string(data), "body rewound after sniffing")
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, _, err := backend.OpenUpload(nil, in, 0)
		require.ErrorIs(t, err, backend.ErrEmptyFile)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, _, err := backend.OpenUpload(fileHeader(t, "a.txt", []byte("hello world")), in, 4)
		require.ErrorIs(t, err, backend.ErrFileTooLarge)
		var verr *backend.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, backend.CodeFileTooLarge, verr.Code)
	})

	t.Run("html rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := backend.OpenUpload(fileHeader(t, "x.pdf", []byte("<html><script>alert(1)</script></html>")), in, 0)
		require.ErrorIs(t, err, backend.ErrInvalidMIME)
	})
}

func TestAuth(t *testing.T) {
	t.Parallel()

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/login":
			var in backend.Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"message":"invalid credentials"}`)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: backend.AuthCookie, Value: "access", Domain: "api.internal", HttpOnly: true, MaxAge: 900})
			http.SetCookie(w, &http.Cookie{Name: backend.RefreshCookie, Value: "refresh", HttpOnly: true, MaxAge: 604800})
			http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "x"})
			_, _ = io.WriteString(w, `{"message":"welcome"}`)
		case "/admin/register":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"message":"registered"}`)
		case "/admin/logout":
			ck, err := r.Cookie(backend.AuthCookie)
			require.NoError(t, err)
			require.Equal(t, "access", ck.Value)
			http.SetCookie(w, &http.Cookie{Name: backend.AuthCookie, Value: "", MaxAge: -1})
			w.WriteHeader(http.StatusOK)
		}
	}))
	ctx := context.Background()

	s, err := c.Login(ctx, backend.Credentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "welcome", s.Message)
	require.Equal(t, "access", s.Token())
	require.Len(t, s.Cookies, 2, "only auth cookies are relayed")
	for _, ck := range s.Cookies {
		require.Empty(t, ck.Domain)
		require.Equal(t, "/", ck.Path)
		require.True(t, ck.HttpOnly)
	}

	_, err = c.Login(ctx, backend.Credentials{Email: "a@b.c", Password: "nope"})
	require.ErrorIs(t, err, backend.ErrUnauthorized)
	require.ErrorContains(t, err, "invalid credentials")

	s, err = c.Register(ctx, backend.Registration{Name: "Ada", Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "registered", s.Message)
	require.Empty(t, s.Token())

	req := httptest.NewRequest(http.MethodPost, "/en/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: backend.AuthCookie, Value: "access"})
	req.AddCookie(&http.Cookie{Name: "other", Value: "x"})
	forwarded := backend.ForwardCookies(req)
	require.Len(t, forwarded, 1)

	s, err = c.Logout(ctx, forwarded)
	require.NoError(t, err)
	require.Len(t, s.Cookies, 1)
	require.Negative(t, s.Cookies[0].MaxAge)
}
