package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrParse  = errors.New("config: failed to parse environment")
	ErrDotenv = errors.New("config: failed to read .env file")
)

var (
	dotenvOnce sync.Once
	dotenvErr  error

	cache sync.Map // reflect.Type -> any (a value, not a pointer)
)

func loadDotenv() error {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			dotenvErr = errors.Join(ErrDotenv, err)
		}
	})
	return dotenvErr
}

// Load fills dst from the process environment. The first successful load of
// each type is cached and copied into dst on later calls.
func Load[T any](dst *T) error {
	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*dst = v.(T)
		return nil
	}

	if err := loadDotenv(); err != nil {
		return err
	}

	var cfg T
	if err := Parse(&cfg, env.ToMap(os.Environ())); err != nil {
		return err
	}

	v, _ := cache.LoadOrStore(key, cfg)
	*dst = v.(T)
	return nil
}

// MustLoad is Load that panics on error. Use it in main.
func MustLoad[T any](dst *T) {
	if err := Load(dst); err != nil {
		panic(err)
	}
}

// Parse fills dst from environ without touching the cache or .env.
func Parse[T any](dst *T, environ map[string]string) error {
	if err := env.ParseWithOptions(dst, env.Options{Environment: environ}); err != nil {
		return errors.Join(ErrParse, err)
	}
	return nil
}
