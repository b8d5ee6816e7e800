package internal

// Handler declares its routes on a Router.
//
//	type Pages struct{ content *content.Store }
//
//	func (h *Pages) Routes(r internal.Router) {
//		r.GET("/{locale}/about", h.about)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc serves a request. A returned error is passed to the app's
// ErrorHandler unless the response was already written.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may change the request through the
// Context (Set, SetContext, Rewrite) before calling next, or answer on its own.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned by handlers and middleware.
type ErrorHandler func(Context, error) error
