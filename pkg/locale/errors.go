package locale

import "errors"

var (
	ErrNoLocales          = errors.New("locale: at least one locale must be configured")
	ErrEmptyLocale        = errors.New("locale: locale cannot be empty")
	ErrUnsupportedDefault = errors.New("locale: default locale is not in the configured set")
)
