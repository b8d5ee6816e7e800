package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/pkg/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	var cfg config.App
	require.NoError(t, config.Parse(&cfg, map[string]string{"BACKEND_URL": "http://api"}))

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, []string{"en", "yo"}, cfg.Locales)
	require.Equal(t, "en", cfg.DefaultLocale)
	require.Equal(t, time.Hour, cfg.MessagesCacheTTL)
	require.Equal(t, "@every 50m", cfg.MessagesRefreshSchedule)
	require.Equal(t, 700*time.Millisecond, cfg.ChatTypingDelay)
	require.Equal(t, 30*time.Minute, cfg.ChatSessionTTL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, "production", cfg.SentryEnvironment)
	require.Equal(t, slog.LevelInfo, cfg.Level())

	require.Equal(t, "http://api", cfg.TranslationsBase())
	require.False(t, cfg.UseEmbeddedTranslations())
	require.NoError(t, cfg.Validate())
}

func TestParse_MissingBackend(t *testing.T) {
	t.Parallel()

	var cfg config.App
	err := config.Parse(&cfg, map[string]string{})
	require.ErrorIs(t, err, config.ErrParse)
	require.ErrorContains(t, err, "BACKEND_URL")

	err = config.Parse(&cfg, map[string]string{"BACKEND_URL": ""})
	require.ErrorIs(t, err, config.ErrParse)
}

func TestParse_Overrides(t *testing.T) {
	t.Parallel()

	var cfg config.App
	require.NoError(t, config.Parse(&cfg, map[string]string{
		"BACKEND_URL":       "http://api",
		"TRANSLATIONS_URL":  "Embedded",
		"LOCALES":           "yo,en,fr",
		"DEFAULT_LOCALE":    "yo",
		"CHAT_TYPING_DELAY": "0s",
		"COOKIE_SECURE":     "true",
		"LOG_LEVEL":         "debug",
	}))

	require.Equal(t, []string{"yo", "en", "fr"}, cfg.Locales)
	require.True(t, cfg.UseEmbeddedTranslations())
	require.True(t, cfg.CookieSecure)
	require.Zero(t, cfg.ChatTypingDelay)
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() config.App {
		return config.App{
			Locales:        []string{"en", "yo"},
			DefaultLocale:  "en",
			ChatSessionTTL: time.Minute,
		}
	}

	cfg := base()
	cfg.DefaultLocale = "fr"
	require.ErrorIs(t, cfg.Validate(), config.ErrParse)

	cfg = base()
	cfg.Locales = []string{" "}
	require.ErrorIs(t, cfg.Validate(), config.ErrParse)

	cfg = base()
	cfg.ChatSessionTTL = 0
	require.ErrorIs(t, cfg.Validate(), config.ErrParse)

	cfg = base()
	cfg.DefaultLocale = "YO"
	require.NoError(t, cfg.Validate())
}

type loadTestConfig struct {
	Value string `env:"MALARIAINFO_CONFIG_TEST" envDefault:"fallback"`
}

func TestLoad_Cached(t *testing.T) {
	t.Setenv("MALARIAINFO_CONFIG_TEST", "first")

	var a loadTestConfig
	require.NoError(t, config.Load(&a))
	require.Equal(t, "first", a.Value)

	t.Setenv("MALARIAINFO_CONFIG_TEST", "second")

	var b loadTestConfig
	config.MustLoad(&b)
	require.Equal(t, "first", b.Value)
}
