package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/opsledger/internal/ops"
)

// Error is a failure surfaced by an engine operation.
//
// Rejected quantity edits are not errors; they come back as an
// ops.Validation with Valid=false.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the engine operation that failed.
	Op string

	// RecordID identifies the record involved, when there is one.
	RecordID string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, typically from the store.
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the referenced record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeNotSource indicates an operation that needs a source record got
	// an execution record.
	ErrCodeNotSource ErrorCode = "NOT_SOURCE"

	// ErrCodeNotExecution indicates an operation that needs an execution
	// record got a source record.
	ErrCodeNotExecution ErrorCode = "NOT_EXECUTION"

	// ErrCodeInvalidRecord indicates a request the record model does not allow.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"

	// ErrCodeStore indicates the store failed to read or write.
	ErrCodeStore ErrorCode = "STORE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.RecordID != "" {
		return fmt.Sprintf("%s: %s: %s (record=%s)", e.Op, e.Code, msg, e.RecordID)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the engine error code of err, or "" if err is not an
// engine error. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsNotFound returns true if err reports a missing record.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound || errors.Is(err, ops.ErrNotFound)
}

// storeError wraps a store failure, promoting ops.ErrNotFound to
// ErrCodeNotFound.
func storeError(op, recordID string, err error) *Error {
	code := ErrCodeStore
	if errors.Is(err, ops.ErrNotFound) {
		code = ErrCodeNotFound
	}
	return &Error{Code: code, Op: op, RecordID: recordID, Err: err}
}

func newError(code ErrorCode, op, recordID, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, RecordID: recordID, Message: fmt.Sprintf(format, args...)}
}
