package repository

import "errors"

// Sentinel kinds for store construction errors.
var (
	ErrUnknownBackend = errors.New("unknown history backend")
	ErrConnect        = errors.New("history backend unreachable")
	ErrDuplicateID    = errors.New("record id already stored")

	errMalformed = errors.New("malformed record")
)
