package quickorder

import (
	"errors"
	"fmt"
)

// Precondition errors. They are informational outcomes, not failures.
var (
	ErrEmptyBatch     = errors.New("nothing to validate")
	ErrNoValidated    = errors.New("no validated items to save")
	ErrNothingToAdd   = errors.New("no valid items to add")
	ErrNothingToSave  = errors.New("no valid items to save as a quote")
	ErrNoSingleResult = errors.New("look up a part before adding it to the cart")
	ErrStaleResponse  = errors.New("validation response superseded by a newer request")
	ErrUnknownTab     = errors.New("unknown quick order tab")
	ErrLineIndex      = errors.New("validated line index out of range")
)

// BackendError is a transport or non-2xx failure from the external backend.
// Status is 0 when the request never got a response.
type BackendError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: request failed: %v", e.Endpoint, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request failed before a response arrived
func (e *BackendError) Transport() bool {
	return e.Status == 0
}

// UserMessage returns the backend's message or the given fallback
func (e *BackendError) UserMessage(fallback string) string {
	if e.Status != 0 && e.Message != "" {
		return e.Message
	}
	return fallback
}

// AsBackendError unwraps err into a *BackendError
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsPrecondition reports whether err is an informational precondition outcome
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrNoValidated) ||
		errors.Is(err, ErrNothingToAdd) ||
		errors.Is(err, ErrNothingToSave) ||
		errors.Is(err, ErrNoSingleResult)
}
