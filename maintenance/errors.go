package maintenance

import "errors"

// Errors returned by the maintenance package.
var (
	// ErrInvalidConfig is returned when the cleanup configuration is invalid.
	ErrInvalidConfig = errors.New("invalid cleanup configuration")
)
