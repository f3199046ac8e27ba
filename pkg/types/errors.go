package types

import (
	"errors"
	"fmt"
)

// Lifecycle and lookup errors.
var (
	// ErrPrecondition is returned when an operation is invoked in the wrong
	// lifecycle state: create on a model with an id, or read, update or
	// delete on one without. No request is sent.
	ErrPrecondition = errors.New("precondition failed")

	ErrConnectionNotFound      = errors.New("connection not found")
	ErrInvalidCustomFieldValue = errors.New("invalid custom field value")
	ErrUnknownResource         = errors.New("unknown resource type")
)

// ValidationError reports an HTTP 422 from the API. Message is the server's
// human-readable explanation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// APIError reports any other unexpected status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusCode returns the status carried by an *APIError in err's chain,
// or 0 if there is none.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}
