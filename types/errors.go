package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a run failure by the stage that produced it
type ErrorKind string

const (
	KindConfig          ErrorKind = "config"
	KindTransientSource ErrorKind = "transient_source"
	KindTransientSink   ErrorKind = "transient_sink"
	KindCursorWrite     ErrorKind = "cursor_write"
)

// SyncError tags an underlying error with the failure kind of the stage
// it escaped from
type SyncError struct {
	Kind ErrorKind
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// WrapError formats an error and tags it with the given kind
func WrapError(kind ErrorKind, format string, args ...any) *SyncError {
	return &SyncError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the failure kind carried by err, empty when the error
// was never classified
func KindOf(err error) ErrorKind {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind
	}
	return ""
}
