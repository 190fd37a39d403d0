package remote

import (
	"errors"
	"fmt"
)

// ErrLoadFailed indicates the read request could not be completed or its script was unusable.
var ErrLoadFailed = errors.New("load failed")

// ErrLoadTimeout indicates no callback fired before the read deadline.
var ErrLoadTimeout = errors.New("load timed out")

// ErrSaveFailed indicates the write request could not be sent.
var ErrSaveFailed = errors.New("save failed")

// RemoteError carries a message reported by the backend in an {error} field.
type RemoteError struct {
	Op      string // "get" or "update"
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportError wraps a low-level failure with the sentinel that classifies it.
type TransportError struct {
	Kind error // ErrLoadFailed, ErrLoadTimeout or ErrSaveFailed
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is matches the classifying sentinel.
func (e *TransportError) Is(target error) bool {
	return target == e.Kind
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
