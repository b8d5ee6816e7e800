package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/data"
	"github.com/dmitrymomot/malariainfo/handlers"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/chat"
	"github.com/dmitrymomot/malariainfo/pkg/content"
	"github.com/dmitrymomot/malariainfo/pkg/cookie"
	"github.com/dmitrymomot/malariainfo/pkg/decisiontree"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

const (
	secret        = "0123456789abcdef0123456789abcdef"
	validToken    = "tok"
	validPassword = "secret"
)

// fakeBackend imitates the document and auth REST service.
type fakeBackend struct {
	docs  map[string]backend.Document
	order []string
	calls []string
	down  bool
	mu    sync.Mutex
}

func newFakeBackend(docs ...backend.Document) *fakeBackend {
	f := &fakeBackend{docs: map[string]backend.Document{}}
	for _, d := range docs {
		f.docs[d.ID] = d
		f.order = append(f.order, d.ID)
	}
	return f
}

func (f *fakeBackend) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) doc(id string) (backend.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	return d, ok
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if f.down {
		http.Error(w, `{"message":"down"}`, http.StatusInternalServerError)
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/documents":
		list := make([]backend.Document, 0, len(f.order))
		for _, id := range f.order {
			list = append(list, f.docs[id])
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": list})

	case r.Method == http.MethodPost && path == "/documents/upload":
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		file, fh, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		body, _ := io.ReadAll(file)
		d := backend.Document{
			ID:       "new",
			Title:    r.FormValue("title"),
			Language: r.FormValue("language"),
			FileName: fh.Filename,
			FileSize: int64(len(body)),
		}
		f.docs[d.ID] = d
		f.order = append(f.order, d.ID)
		writeJSON(w, http.StatusCreated, d)

	case strings.HasPrefix(path, "/documents/"):
		id := strings.TrimPrefix(path, "/documents/")
		d, ok := f.docs[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		if r.Method != http.MethodGet && !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"document": d})
		case http.MethodPut:
			var in backend.DocumentInput
			_ = json.NewDecoder(r.Body).Decode(&in)
			d.Title, d.Description, d.Category, d.Language = in.Title, in.Description, in.Category, in.Language
			f.docs[id] = d
			writeJSON(w, http.StatusOK, d)
		case http.MethodDelete:
			delete(f.docs, id)
			w.WriteHeader(http.StatusNoContent)
		}

	case r.Method == http.MethodPost && path == "/admin/login":
		var in backend.Credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != validPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: backend.AuthCookie, Value: validToken, Domain: "backend.test", MaxAge: 900})
		http.SetCookie(w, &http.Cookie{Name: backend.RefreshCookie, Value: "ref", MaxAge: 86400})
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})

	case r.Method == http.MethodPost && path == "/admin/register":
		writeJSON(w, http.StatusCreated, map[string]string{"message": "created"})

	case r.Method == http.MethodPost && path == "/admin/logout":
		writeJSON(w, http.StatusOK, map[string]string{"message": "bye"})

	default:
		http.NotFound(w, r)
	}
}

func authorized(r *http.Request) bool {
	c, err := r.Cookie(backend.AuthCookie)
	return err == nil && c.Value == validToken
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	app      *malariainfo.App
	backend  *fakeBackend
	sessions *chat.Sessions
}

func newEnv(t *testing.T, docs ...backend.Document) *testEnv {
	t.Helper()

	resolver, err := locale.New(locale.WithLocales("en", "yo"), locale.WithDefault("en"))
	require.NoError(t, err)

	loader := messages.NewLoader(messages.NewFSFetcher(data.Translations()))
	t.Cleanup(func() { _ = loader.Close() })

	store, err := content.Load(data.Content(), content.WithFallbackLocale("en"))
	require.NoError(t, err)

	tree, err := decisiontree.LoadFS(data.FS, data.DecisionTreeFile)
	require.NoError(t, err)
	sessions := chat.NewSessions(tree, chat.WithWidgetOptions(chat.WithTypingDelay(0)))
	t.Cleanup(func() { _ = sessions.Close() })

	fb := newFakeBackend(docs...)
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(srv.URL)
	require.NoError(t, err)

	site := handlers.NewSite(resolver, loader)
	app := malariainfo.New(
		malariainfo.WithMiddleware(
			middlewares.Locale(resolver),
			middlewares.Messages(loader),
		),
		malariainfo.WithErrorHandler(handlers.ErrorHandler(site)),
		malariainfo.WithNotFoundHandler(handlers.NotFound),
		malariainfo.WithCookieOptions(cookie.WithSecret(secret)),
		malariainfo.WithStaticFiles("/static/", data.FS, data.StaticDir),
		malariainfo.WithHandlers(
			handlers.NewPages(site, store),
			handlers.NewMaterials(site, client),
			handlers.NewAdmin(site, client),
			handlers.NewDocuments(client),
			handlers.NewTranslations(resolver, loader),
			handlers.NewChat(site, sessions),
		),
	)
	return &testEnv{app: app, backend: fb, sessions: sessions}
}

func (e *testEnv) serve(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.app.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, cookies...)
}

func (e *testEnv) sendJSON(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.serve(req, cookies...)
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func adminCookies() []*http.Cookie {
	return []*http.Cookie{{Name: backend.AuthCookie, Value: validToken}}
}

func sampleDocs() []backend.Document {
	return []backend.Document{
		{ID: "1", Title: "Bed nets guide", Language: "en"},
		{ID: "2", Title: "Itosona apapo", Language: "yo"},
		{ID: "3", Title: "Testing poster", Language: "en"},
	}
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}
