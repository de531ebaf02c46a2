package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Sheet store errors
	ErrStore              = fmt.Errorf("sheet store request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSheetNotFound      = fmt.Errorf("sheet not found")
	ErrRowNotFound        = fmt.Errorf("row not found")

	// Dataset errors
	ErrValidation = fmt.Errorf("the selected sheet does not have the expected columns")
	ErrFormat     = fmt.Errorf("invalid PageID format")

	// Navigation and editing errors
	ErrOutOfRange = fmt.Errorf("position out of range")
	ErrNoSheet    = fmt.Errorf("no sheet selected")
	ErrNoRow      = fmt.Errorf("no row displayed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
