package messages

import "errors"

var (
	ErrUnexpectedStatus = errors.New("messages: unexpected status from translation endpoint")
	ErrDecode           = errors.New("messages: translation bundle is not a JSON object")
	ErrInvalidLocale    = errors.New("messages: invalid locale")
	ErrNotFound         = errors.New("messages: no translation file for locale")
	ErrInvalidSchedule  = errors.New("messages: invalid refresh schedule")
)
