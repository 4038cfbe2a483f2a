package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrCaptureFailed = fmt.Errorf("authorization capture failed")
	ErrInvalidToken  = fmt.Errorf("invalid access token")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limited")
	ErrInvalidJSON        = fmt.Errorf("invalid JSON response")
	ErrRetriesExhausted   = fmt.Errorf("retries exhausted")
	ErrTrackResolution    = fmt.Errorf("track resolution failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")

	// Persistence errors
	ErrNotFound          = fmt.Errorf("record not found")
	ErrDatabaseOperation = fmt.Errorf("database operation failed")
)
