// Command server runs the malaria information site.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/data"
	"github.com/dmitrymomot/malariainfo/handlers"
	"github.com/dmitrymomot/malariainfo/middlewares"
	"github.com/dmitrymomot/malariainfo/pkg/backend"
	"github.com/dmitrymomot/malariainfo/pkg/cache"
	"github.com/dmitrymomot/malariainfo/pkg/chat"
	"github.com/dmitrymomot/malariainfo/pkg/config"
	"github.com/dmitrymomot/malariainfo/pkg/content"
	"github.com/dmitrymomot/malariainfo/pkg/cookie"
	"github.com/dmitrymomot/malariainfo/pkg/decisiontree"
	"github.com/dmitrymomot/malariainfo/pkg/health"
	"github.com/dmitrymomot/malariainfo/pkg/locale"
	"github.com/dmitrymomot/malariainfo/pkg/logger"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
	"github.com/dmitrymomot/malariainfo/pkg/redis"
)

const redisConnectTimeout = 10 * time.Second

func main() {
	var cfg config.App
	config.MustLoad(&cfg)

	log, flush := logger.New(logger.Config{
		Level:             cfg.Level(),
		SentryDSN:         cfg.SentryDSN,
		SentryEnvironment: cfg.SentryEnvironment,
	}, middlewares.RequestIDExtractor(), middlewares.LocaleExtractor())

	if err := run(cfg, log, flush); err != nil {
		log.Error("server stopped", "error", err)
		_ = flush(context.Background())
		os.Exit(1)
	}
}

func run(cfg config.App, log *slog.Logger, flush logger.Flush) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolver, err := locale.New(
		locale.WithLocales(cfg.Locales...),
		locale.WithDefault(cfg.DefaultLocale),
	)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return err
	}

	checks := health.Checks{}
	var optional []string
	var shutdown []malariainfo.RunOption

	loaderOpts := []messages.Option{
		messages.WithTTL(cfg.MessagesCacheTTL),
		messages.WithLogger(log),
	}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		rdb, err := redis.Open(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			return err
		}
		loaderOpts = append(loaderOpts, messages.WithCache(cache.NewRedis[messages.Bundle](rdb,
			cache.WithPrefix[messages.Bundle]("malariainfo:messages:"),
			cache.WithRedisTTL[messages.Bundle](cfg.MessagesCacheTTL),
		)))
		checks["redis"] = redis.Ping(rdb)
		optional = append(optional, "redis")
		shutdown = append(shutdown, malariainfo.ShutdownHook(redis.Close(rdb)))
	}

	var fetcher messages.Fetcher
	if cfg.UseEmbeddedTranslations() {
		fetcher = messages.NewFSFetcher(data.Translations())
	} else {
		hf := messages.NewHTTPFetcher(cfg.TranslationsBase())
		checks["translations"] = hf.Ping(resolver.Default())
		fetcher = hf
	}
	loader := messages.NewLoader(fetcher, loaderOpts...)
	checks["backend"] = client.Ping

	store, err := content.Load(data.Content(), content.WithFallbackLocale(resolver.Default()))
	if err != nil {
		return err
	}
	tree, err := decisiontree.LoadFS(data.FS, data.DecisionTreeFile)
	if err != nil {
		return err
	}
	sessions := chat.NewSessions(tree,
		chat.WithSessionTTL(cfg.ChatSessionTTL),
		chat.WithWidgetOptions(chat.WithTypingDelay(cfg.ChatTypingDelay)),
		chat.WithSessionsLogger(log),
	)

	site := handlers.NewSite(resolver, loader)

	app := malariainfo.New(
		malariainfo.WithLogger(log),
		malariainfo.WithCookieOptions(
			cookie.WithSecret(cfg.CookieSecret),
			cookie.WithSecure(cfg.CookieSecure),
		),
		malariainfo.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Recover(),
			middlewares.Timeout(cfg.RequestTimeout),
			middlewares.Locale(resolver),
			middlewares.Messages(loader),
		),
		malariainfo.WithErrorHandler(handlers.ErrorHandler(site)),
		malariainfo.WithNotFoundHandler(handlers.NotFound),
		malariainfo.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		malariainfo.WithStaticFiles("/static/", data.FS, data.StaticDir),
		malariainfo.WithHealthChecks(checks,
			health.WithOptional(optional...),
			health.WithLogger(log),
		),
		malariainfo.WithHandlers(
			handlers.NewPages(site, store),
			handlers.NewMaterials(site, client),
			handlers.NewAdmin(site, client),
			handlers.NewDocuments(client),
			handlers.NewTranslations(resolver, loader),
			handlers.NewChat(site, sessions, handlers.WithSessionCookieTTL(sessions.TTL())),
		),
	)

	runOpts := []malariainfo.RunOption{
		malariainfo.Logger(log),
		malariainfo.ShutdownTimeout(cfg.ShutdownTimeout),
	}
	if cfg.MessagesRefreshSchedule != "" {
		refresher, err := messages.NewRefresher(loader, resolver.Locales(), cfg.MessagesRefreshSchedule)
		if err != nil {
			return err
		}
		runOpts = append(runOpts,
			malariainfo.StartupHook(refresher.Start),
			malariainfo.ShutdownHook(refresher.Stop),
		)
	}
	runOpts = append(runOpts,
		malariainfo.ShutdownHook(func(context.Context) error { return sessions.Close() }),
		malariainfo.ShutdownHook(func(context.Context) error { return loader.Close() }),
	)
	runOpts = append(runOpts, shutdown...)
	runOpts = append(runOpts, malariainfo.ShutdownHook(flush))

	return app.Run(cfg.Addr, runOpts...)
}
