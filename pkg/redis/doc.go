// Package redis opens go-redis clients for the shared translation cache and
// exposes readiness and shutdown hooks for them.
//
//	client, err := redis.Open(ctx, cfg.RedisURL, redis.WithRetry(3, time.Second))
//	if err != nil {
//		return err
//	}
//	app := malariainfo.New(
//		malariainfo.WithHealthChecks(health.Checks{"redis": redis.Ping(client)}),
//		malariainfo.WithShutdownHook(redis.Close(client)),
//	)
package redis
