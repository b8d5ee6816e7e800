package decisiontree

import "errors"

var (
	ErrEmptyTree         = errors.New("decisiontree: tree has no nodes")
	ErrUnknownRoot       = errors.New("decisiontree: root node does not exist")
	ErrDanglingNext      = errors.New("decisiontree: next target does not exist")
	ErrUnresolvedOption  = errors.New("decisiontree: option has neither next node nor result")
	ErrInvalidOptionCode = errors.New("decisiontree: option code must be a single letter")
	ErrOrphanTransition  = errors.New("decisiontree: next or result refers to an undeclared option")
	ErrNodeNotFound      = errors.New("decisiontree: node not found")
	ErrUnsupportedFormat = errors.New("decisiontree: unsupported file format")
	ErrInvalidResult     = errors.New("decisiontree: result must be a string or a localized object")
)
