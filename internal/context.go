package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/malariainfo/pkg/cookie"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

const maxJSONBody = 1 << 20

// LocaleKey is the context key of the resolved request locale.
type LocaleKey struct{}

// BundleKey is the context key of the request's translation bundle.
type BundleKey struct{}

// Component is anything that renders HTML. templ.Component satisfies it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context gives handlers access to the request, the response and the
// per-request locale and translations. It is also a context.Context backed
// by the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	Context() context.Context

	// SetContext replaces the request context, e.g. to add a deadline.
	SetContext(ctx context.Context)

	// Rewrite changes the request path before routing. Only effective in
	// app-level middleware.
	Rewrite(path string)

	Param(name string) string
	Query(name string) string
	Form(name string) string
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)
	Header(name string) string
	SetHeader(name, value string)

	// DecodeJSON reads a JSON request body (at most 1MB) into v.
	DecodeJSON(v any) error

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	Redirect(code int, url string) error
	Render(code int, component Component) error

	// Error builds an HTTPError for the handler to return.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// IsAPI reports whether the client expects JSON rather than HTML.
	IsAPI() bool

	Written() bool
	ResponseWriter() *ResponseWriter

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	Set(key, value any)
	Get(key any) any

	Cookie(name string) (string, error)
	Cookies() *cookie.Manager
	SetFlash(key, value string)
	// Flash reads and clears a flash value. Missing or forged flashes read
	// as empty.
	Flash(key string) string

	// Locale returns the locale resolved for this request, or "".
	Locale() string
	// LocalePath prefixes p with the request locale.
	LocalePath(p string) string
	// Bundle returns the request's translations. It is never nil.
	Bundle() messages.Bundle
	// T translates key, falling back to the key itself.
	T(key string, args ...messages.M) string
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	logger   *slog.Logger
	cookies  *cookie.Manager
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	return &requestContext{
		request:  r,
		response: NewResponseWriter(w),
		logger:   app.logger,
		cookies:  app.cookies,
	}
}

// SwapResponse returns a copy of c that writes to w. The original keeps its
// writer, so a middleware can hand the copy to a handler it may abandon and
// still respond through c. Contexts not built by App are returned as is.
func SwapResponse(c Context, w http.ResponseWriter) Context {
	rc, ok := c.(*requestContext)
	if !ok {
		return c
	}
	cp := *rc
	cp.response = NewResponseWriter(w)
	return &cp
}

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error                  { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any           { return c.request.Context().Value(key) }

func (c *requestContext) Request() *http.Request        { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context      { return c.request.Context() }

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Rewrite(path string) {
	r := c.request.Clone(c.request.Context())
	r.URL.Path = path
	r.URL.RawPath = ""
	c.request = r
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) DecodeJSON(v any) error {
	if c.request.Body == nil {
		return ErrBadRequest("errors.invalid_json")
	}
	dec := json.NewDecoder(io.LimitReader(c.request.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return ErrBadRequest("errors.invalid_json", WithError(err), WithErrorCode("invalid_json"))
	}
	return nil
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := io.WriteString(c.response, s)
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) IsAPI() bool {
	return strings.HasPrefix(c.request.URL.Path, "/api/") ||
		strings.Contains(c.request.Header.Get("Accept"), "application/json")
}

func (c *requestContext) Written() bool                   { return c.response.Written() }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }

func (c *requestContext) Logger() *slog.Logger { return c.logger }

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookies.Get(c.request, name)
}

func (c *requestContext) Cookies() *cookie.Manager { return c.cookies }

func (c *requestContext) SetFlash(key, value string) {
	c.cookies.SetFlash(c.response, key, value)
}

func (c *requestContext) Flash(key string) string {
	v, err := c.cookies.Flash(c.response, c.request, key)
	if err != nil {
		return ""
	}
	return v
}

func (c *requestContext) Locale() string {
	l, _ := c.Get(LocaleKey{}).(string)
	return l
}

func (c *requestContext) LocalePath(p string) string {
	l := c.Locale()
	if l == "" {
		return p
	}
	if p == "" || p == "/" {
		return "/" + l
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "/" + l + p
}

func (c *requestContext) Bundle() messages.Bundle {
	if b, ok := c.Get(BundleKey{}).(messages.Bundle); ok && b != nil {
		return b
	}
	return messages.Bundle{}
}

func (c *requestContext) T(key string, args ...messages.M) string {
	return c.Bundle().T(key, args...)
}
