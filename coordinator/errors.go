package coordinator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGenerationFailed is matched by every *GenerationFailure.
var ErrGenerationFailed = errors.New("generation failed")

// ErrEmptyReply marks a completion that returned only whitespace.
var ErrEmptyReply = errors.New("empty reply")

// AttemptError records why one model attempt did not produce a result.
type AttemptError struct {
	Model   string
	Outcome string
	Err     error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Model, e.Outcome, e.Err)
}

// GenerationFailure is returned when every model in the priority list failed.
type GenerationFailure struct {
	Task     string
	Attempts []AttemptError
}

func (e *GenerationFailure) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: %v: no models to try", e.Task, ErrGenerationFailed)
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("%s: %v after %d attempts: %s", e.Task, ErrGenerationFailed, len(e.Attempts), strings.Join(parts, "; "))
}

func (e *GenerationFailure) Unwrap() error { return ErrGenerationFailed }

// Models lists the models that were tried, in order.
func (e *GenerationFailure) Models() []string {
	out := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		out[i] = a.Model
	}
	return out
}
