package malariainfo

import (
	"context"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/malariainfo/internal"
	"github.com/dmitrymomot/malariainfo/pkg/cookie"
	"github.com/dmitrymomot/malariainfo/pkg/health"
	"github.com/dmitrymomot/malariainfo/pkg/logger"
)

// Type aliases - public API
type (
	// App owns the router, the middleware stack and the server lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access, the request locale and
	// its translations.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = internal.Middleware

	// ErrorHandler renders errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// Component is anything that renders HTML.
	Component = internal.Component

	// HTTPError carries a status code and translation keys.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Extractor reads a value from the first source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads one candidate value from the request.
	ExtractorSource = internal.ExtractorSource

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// ResponseWriter records status and size of a response.
	ResponseWriter = internal.ResponseWriter

	// LocaleKey is the context key of the request locale.
	LocaleKey = internal.LocaleKey

	// BundleKey is the context key of the request translations.
	BundleKey = internal.BundleKey
)

// ErrStartup is returned by Run when a startup hook fails.
var ErrStartup = internal.ErrStartup

// New creates an application. The App is immutable after creation.
//
//	app := malariainfo.New(
//	    malariainfo.WithMiddleware(middlewares.RequestID(), middlewares.Locale(resolver)),
//	    malariainfo.WithHandlers(handlers.NewPages(site, store)),
//	)
//
//	err := app.Run(":8080", malariainfo.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds global middleware. It runs before routing, so it may
// rewrite the request path.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithStaticFiles serves files from fsys under pattern, e.g. "/static/".
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets the handler for errors returned by handlers.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets the handler for unmatched routes.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets the handler for a known path with the
// wrong method.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks mounts liveness and readiness endpoints.
func WithHealthChecks(checks health.Checks, opts ...health.Option) Option {
	return internal.WithHealthChecks(checks, opts...)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithCookieOptions configures the cookie manager.
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithCookieManager replaces the cookie manager.
func WithCookieManager(m *cookie.Manager) Option {
	return internal.WithCookieManager(m)
}

// Run options

// Logger sets the logger of the server lifecycle.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds the graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook runs after the listener is bound and before serving.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs after the server stopped accepting requests.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the parent context. The server stops when it is done.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }
func WithErrorCode(code string) HTTPErrorOption { return internal.WithErrorCode(code) }
func WithRetryURL(url string) HTTPErrorOption { return internal.WithRetryURL(url) }
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

func ErrBadRequest(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(msg, opts...)
}

func ErrUnauthorized(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(msg, opts...)
}

func ErrNotFound(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(msg, opts...)
}

func ErrConflict(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(msg, opts...)
}

func ErrUnprocessable(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(msg, opts...)
}

func ErrInternal(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(msg, opts...)
}

func ErrBadGateway(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadGateway(msg, opts...)
}

func ErrServiceUnavailable(msg string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(msg, opts...)
}

// Extractors

// NewExtractor reads a value from the first source that yields one.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }
func FromCookie(name string) ExtractorSource { return internal.FromCookie(name) }
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// Helpers

// ContextValue returns the value stored under key, or T's zero value.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// QueryDefault returns a typed query parameter or def.
func QueryDefault[T string | int | bool](c Context, name string, def T) T {
	return internal.QueryDefault(c, name, def)
}
