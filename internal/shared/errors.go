package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Persistence errors
	ErrNotFound  = fmt.Errorf("record not found")
	ErrDuplicate = fmt.Errorf("record already exists")

	// Workflow and service errors
	ErrWebhookFailed      = fmt.Errorf("workflow webhook failed")
	ErrEndpointNotFound   = fmt.Errorf("no workflow endpoint registered")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidStatus   = fmt.Errorf("invalid status")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrUnauthorized    = fmt.Errorf("unauthorized")
)
