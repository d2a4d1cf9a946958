package completion

import (
	"errors"
	"fmt"
)

// ErrTransport marks network or service-side failures of a completion call.
var ErrTransport = errors.New("completion transport error")

// TransportError wraps a failed completion call with the provider and model it was sent to.
type TransportError struct {
	Provider   string
	Model      string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Model, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Model, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any *TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NewTransportError is a shorthand used by the providers.
func NewTransportError(provider, model string, status int, err error) *TransportError {
	return &TransportError{Provider: provider, Model: model, StatusCode: status, Err: err}
}
