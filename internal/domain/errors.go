package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrCancelled      = errors.New("job cancelled")
	ErrDisposed       = errors.New("subscription disposed")
	ErrInvalidRequest = errors.New("invalid request")
	ErrEngineBusy     = errors.New("engine busy")
)

// Engine return codes. Anything other than these two is a failure.
const (
	ReturnCodeSuccess = 0
	ReturnCodeCancel  = 255
)

// EngineError is the terminal error of a job whose engine invocation did not
// succeed. Detail carries job specific context, such as the frame selection
// expression of an extraction.
type EngineError struct {
	Kind   JobKind
	Code   int
	Detail string
}

func (e *EngineError) Error() string {
	if e.Code == ReturnCodeCancel {
		if e.Detail != "" {
			return fmt.Sprintf("%s cancelled: %s", e.Kind, e.Detail)
		}
		return fmt.Sprintf("%s cancelled", e.Kind)
	}
	return fmt.Sprintf("%s: command execution failed with rc=%d", e.Kind, e.Code)
}

func (e *EngineError) Is(target error) bool {
	return target == ErrCancelled && e.Code == ReturnCodeCancel
}

// Cancelled reports whether the engine stopped because it was asked to.
func (e *EngineError) Cancelled() bool {
	return e.Code == ReturnCodeCancel
}
