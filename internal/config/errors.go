package config

import "errors"

// Load wraps file and env failures in ErrLoadConfig and rejected values in
// ErrInvalidConfig, so callers can tell a broken file from a bad setting.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
