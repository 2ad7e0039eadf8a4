package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrConfigurationMissing  = errors.New("required configuration is missing")
	ErrInvalidConfig         = errors.New("invalid configuration value")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrNotFound              = errors.New("not found")
	ErrInvalidKey            = errors.New("invalid object key")
	ErrUserExists            = errors.New("user already exists")
)
