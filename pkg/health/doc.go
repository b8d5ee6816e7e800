// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"redis":        redis.Ping(client),
//		"translations": fetcher.Ping("en"),
//	}, health.WithOptional("translations")))
//
// Checks run concurrently under a shared timeout (5s by default). A failing
// required check makes the report unhealthy (503). A failing optional check
// only degrades it (200).
//
// Responses are plain text ("healthy", "degraded", "unhealthy") unless the
// client asks for JSON with ?format=json or an Accept header.
package health
