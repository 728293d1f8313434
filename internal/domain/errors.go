package domain

import "errors"

// Configuration validation errors. They are aggregated by Validate so that
// callers can check for each of them with errors.Is.
var (
	ErrNoRootURL              = errors.New("no root URL specified")
	ErrInvalidPoolSize        = errors.New("invalid thread pool size: must be non-negative")
	ErrInvalidMaxConnections  = errors.New("invalid max connections: must be positive")
	ErrInvalidErrorPercentage = errors.New("invalid allowed server errors percentage: must be between 0 and 100")
	ErrInvalidTimeout         = errors.New("invalid timeout: must be non-negative")
	ErrInvalidRate            = errors.New("invalid rate: must be non-negative")
)

// ErrNoResponse is reported for a fetch that returned neither a response nor an error.
var ErrNoResponse = errors.New("no response received")
