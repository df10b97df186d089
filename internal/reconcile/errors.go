package reconcile

import (
	"errors"
	"fmt"
)

// ErrNoReasoner is returned by NewEngine when no Reasoner is supplied.
var ErrNoReasoner = errors.New("reconcile: reasoner is required")

// InputError reports a malformed detection set. It is returned before any
// call to the reasoning service.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}
