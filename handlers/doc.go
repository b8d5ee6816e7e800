// Package handlers holds the HTTP handlers of the site: localized pages,
// the materials library, the admin screens, the chat assistant and the JSON
// API used by client scripts.
//
// Page routes are registered with full /{locale}/... patterns and guarded by
// Site.Localized, so only paths the Locale middleware resolved reach them.
// Every handler returns errors; ErrorHandler turns them into error pages or
// JSON bodies.
package handlers
