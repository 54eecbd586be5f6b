package service

import "errors"

// Sentinel kinds for service failures.
var (
	ErrNotStarted = errors.New("service not started")
	ErrQueueFull  = errors.New("submission queue full")
	ErrCancelled  = errors.New("assessment cancelled")
)
