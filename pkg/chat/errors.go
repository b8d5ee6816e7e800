package chat

import "errors"

var (
	ErrInvalidOption   = errors.New("chat: option is not offered at the current step")
	ErrBusy            = errors.New("chat: assistant is still typing")
	ErrTerminal        = errors.New("chat: conversation has ended, reset to start again")
	ErrClosed          = errors.New("chat: widget is closed")
	ErrNotStarted      = errors.New("chat: conversation has not started")
	ErrSessionNotFound = errors.New("chat: session not found")
)
