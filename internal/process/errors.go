package process

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks requests rejected before any remote call.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrMalformedResponse marks structured output that does not fit the result shape.
	ErrMalformedResponse = errors.New("malformed model response")
)

// RemoteServiceError reports a failed call to the generative backend.
type RemoteServiceError struct {
	Op  string // "generate", "image", "speech"
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("remote service %s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
