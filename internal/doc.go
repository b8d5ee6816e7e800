// Package internal is the HTTP core of the site: App, Context, Router and
// the handler and middleware types built on top of chi.
//
// Import the root malariainfo package instead; it re-exports what
// applications need.
//
// # Context
//
// Context embeds context.Context, so handlers pass it straight to clients
// and loaders:
//
//	func (h *Materials) list(c internal.Context) error {
//	    docs, err := h.backend.ListDocuments(c)
//	    if err != nil {
//	        return internal.ErrBadGateway("errors.backend", internal.WithError(err))
//	    }
//	    return c.Render(http.StatusOK, views.Materials(c.Bundle(), docs))
//	}
//
// Besides request and response access it carries the request locale and its
// translation bundle, which the locale and messages middlewares store:
//
//	c.Locale()              // "yo"
//	c.T("nav.home")         // "Ilé"
//	c.LocalePath("/about")  // "/yo/about"
//
// # Middleware
//
// Global middleware (WithMiddleware) runs before chi matches a route, so it
// can rewrite the request path with Context.Rewrite. Route middleware runs
// after matching. Either kind changes what reaches the next handler through
// Set, SetContext and Rewrite on its own Context.
//
// # Errors
//
// Handlers return errors instead of writing them. HTTPError carries the
// status, a message (often a translation key) and an optional retry link;
// the ErrorHandler set with WithErrorHandler renders it. Without one, a
// plain status text response is written.
//
// # Running
//
//	err := app.Run(":3000",
//	    internal.Logger(log),
//	    internal.ShutdownTimeout(15*time.Second),
//	    internal.StartupHook(refresher.Start),
//	    internal.ShutdownHook(refresher.Stop),
//	)
//
// Run returns after SIGINT or SIGTERM once in-flight requests finished and
// the shutdown hooks ran.
package internal
