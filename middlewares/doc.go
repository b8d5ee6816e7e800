// Package middlewares holds the request pipeline of the site.
//
// Recommended order:
//
//	app.WithMiddleware(
//	    middlewares.RequestID(),       // id for every later log line
//	    middlewares.AccessLog(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(30*time.Second),
//	    middlewares.Locale(resolver),  // redirect or rewrite, before routing
//	    middlewares.Messages(loader),  // bundle for the resolved locale
//	)
//
// Locale must be global middleware: it rewrites duplicate locale segments
// out of the request path, and only global middleware runs before chi picks
// a route. Admin routes add RequireAuthCookie per group.
//
// Recover and Timeout return *PanicError and *TimeoutError; the app's
// error handler maps them to 500 and 504.
//
// Use RequestIDExtractor and LocaleExtractor with logger.New to tag log
// entries:
//
//	log, flush := logger.New(cfg, middlewares.RequestIDExtractor(), middlewares.LocaleExtractor())
package middlewares
