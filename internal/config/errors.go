package config

import (
	"errors"
)

// Sentinel errors for this package, matchable with errors.Is from callers.
var (
	// ErrInvalidConfig marks a configuration that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a failure to read or decode a configuration source.
	ErrLoadConfig = errors.New("load config failed")
)
