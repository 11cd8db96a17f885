package service

import "errors"

// Service-level sentinel errors. Match with errors.Is.
var (
	ErrDuplicate    = errors.New("duplicate submission")
	ErrBackpressure = errors.New("submission queue full")
	ErrNotStarted   = errors.New("service not started")
	ErrStopped      = errors.New("service stopped")
)
