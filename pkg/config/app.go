package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// EmbeddedTranslations is the TRANSLATIONS_URL value that serves the bundled
// translation files instead of calling the backend.
const EmbeddedTranslations = "embedded"

// App is the server configuration.
type App struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	BackendURL      string        `env:"BACKEND_URL,required,notEmpty"`
	TranslationsURL string        `env:"TRANSLATIONS_URL"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSecret    string        `env:"COOKIE_SECRET"`

	Locales       []string `env:"LOCALES" envDefault:"en,yo" envSeparator:","`
	DefaultLocale string   `env:"DEFAULT_LOCALE" envDefault:"en"`

	MessagesCacheTTL        time.Duration `env:"MESSAGES_CACHE_TTL" envDefault:"1h"`
	MessagesRefreshSchedule string        `env:"MESSAGES_REFRESH_SCHEDULE" envDefault:"@every 50m"`
	RedisURL                string        `env:"REDIS_URL"`

	ChatTypingDelay time.Duration `env:"CHAT_TYPING_DELAY" envDefault:"700ms"`
	ChatSessionTTL  time.Duration `env:"CHAT_SESSION_TTL" envDefault:"30m"`

	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// TranslationsBase returns the base URL of the translation endpoint.
// It defaults to the backend.
func (a App) TranslationsBase() string {
	if a.TranslationsURL == "" {
		return a.BackendURL
	}
	return a.TranslationsURL
}

// UseEmbeddedTranslations reports whether bundles come from the binary.
func (a App) UseEmbeddedTranslations() bool {
	return strings.EqualFold(a.TranslationsURL, EmbeddedTranslations)
}

// Level maps LOG_LEVEL to a slog level. Unknown values mean info.
func (a App) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate checks values env tags cannot express.
func (a App) Validate() error {
	locales := slices.DeleteFunc(slices.Clone(a.Locales), func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
	if len(locales) == 0 {
		return fmt.Errorf("%w: LOCALES is empty", ErrParse)
	}
	if a.DefaultLocale != "" && !slices.ContainsFunc(locales, func(l string) bool {
		return strings.EqualFold(strings.TrimSpace(l), a.DefaultLocale)
	}) {
		return fmt.Errorf("%w: DEFAULT_LOCALE %q is not in LOCALES", ErrParse, a.DefaultLocale)
	}
	if a.ChatTypingDelay < 0 || a.ChatSessionTTL <= 0 {
		return fmt.Errorf("%w: chat durations must be positive", ErrParse)
	}
	return nil
}
