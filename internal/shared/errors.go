package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session and access errors
	ErrNotAuthenticated     = fmt.Errorf("not authenticated")
	ErrAlreadyAuthenticated = fmt.Errorf("already authenticated")
	ErrAuthFailed           = fmt.Errorf("authentication failed")
	ErrStorage              = fmt.Errorf("local storage unavailable")

	// Backend errors
	ErrNetwork            = fmt.Errorf("network error")
	ErrFetchUser          = fmt.Errorf("failed to load user")
	ErrUpdateUser         = fmt.Errorf("failed to update user")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrEntryNotFound      = fmt.Errorf("entry not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
