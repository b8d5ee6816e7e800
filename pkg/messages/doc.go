// Package messages delivers translation bundles to request handlers.
//
// A Bundle is the nested key/value tree returned by the translation endpoint
// for one locale. Keys are dotted paths resolved by descent at lookup time:
//
//	b := messages.Bundle{"nav": map[string]any{"home": "Ile"}}
//	b.Lookup("nav.home")    // "Ile"
//	b.Lookup("nav.missing") // "nav.missing"
//
// Loader fetches bundles through a Fetcher and keeps them in a cache for a
// fixed window. Fetch failures never reach the caller: Load logs a warning and
// returns an empty Bundle, so pages degrade to raw keys. Failures are not
// cached, so the next request retries.
//
// Refresher re-fetches bundles on a cron schedule so that a cache window
// rarely expires under live traffic.
package messages
