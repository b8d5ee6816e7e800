// Package malariainfo is the web application behind the bilingual
// (English/Yoruba) malaria information site.
//
// The package is a thin facade over internal: an App built on chi, a
// request Context that knows the request locale and its translation bundle,
// and a runtime with graceful shutdown.
//
//	app := malariainfo.New(
//	    malariainfo.WithLogger(log),
//	    malariainfo.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Locale(resolver),
//	        middlewares.Messages(loader),
//	    ),
//	    malariainfo.WithHandlers(
//	        handlers.NewPages(site, store),
//	        handlers.NewChat(site, sessions),
//	    ),
//	)
//
//	if err := app.Run(":8080", malariainfo.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Locales
//
// Every page lives under a locale prefix: /en/materials, /yo/materials.
// The Locale middleware redirects unprefixed paths to the visitor's
// preferred locale and stores the resolved locale on the request, where
// handlers read it with Context.Locale and translate with Context.T.
//
// # Errors
//
// Handlers return errors. An *HTTPError carries the status and a
// translation key; the app's ErrorHandler renders it as an HTML page or, for
// /api/ requests, as JSON.
//
// # Server lifecycle
//
// Run blocks until SIGINT/SIGTERM or until the context given with
// WithContext is done, then drains in-flight requests and runs the shutdown
// hooks.
package malariainfo
