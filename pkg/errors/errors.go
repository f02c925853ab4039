// Package errors provides a structured error type for the overlay filesystems,
// with error codes, categories, and an errno mapping for the FUSE boundary.
package errors

import (
	goerrors "errors"
	"fmt"
	"syscall"
	"time"
)

// ErrorCode identifies a specific failure mode within the overlay domain.
type ErrorCode string

const (
	// Argument errors (CLI / startup)
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotAbsolutePath ErrorCode = "NOT_ABSOLUTE_PATH"

	// Host filesystem I/O errors
	ErrCodeIO          ErrorCode = "IO_ERROR"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodePermission  ErrorCode = "PERMISSION_DENIED"
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"

	// History bookkeeping errors
	ErrCodeHistoryCorrupt      ErrorCode = "HISTORY_CORRUPT"
	ErrCodeVersionLimitReached ErrorCode = "VERSION_LIMIT_REACHED"
)

// ErrorCategory groups error codes for logging and metrics labeling.
type ErrorCategory string

const (
	CategoryArgument ErrorCategory = "argument"
	CategoryIO       ErrorCategory = "io"
	CategoryHistory  ErrorCategory = "history"
)

func categoryFor(code ErrorCode) ErrorCategory {
	switch code {
	case ErrCodeInvalidArgument, ErrCodeNotAbsolutePath:
		return CategoryArgument
	case ErrCodeHistoryCorrupt, ErrCodeVersionLimitReached:
		return CategoryHistory
	default:
		return CategoryIO
	}
}

// OverlayError is a structured error carrying enough context to log usefully
// and to translate back into a syscall.Errno at the FUSE boundary.
type OverlayError struct {
	Code      ErrorCode
	Category  ErrorCategory
	Component string
	Operation string
	Path      string
	Cause     error
	Timestamp time.Time
}

// New creates an OverlayError with no wrapped cause.
func New(code ErrorCode, component, operation, path string) *OverlayError {
	return &OverlayError{
		Code:      code,
		Category:  categoryFor(code),
		Component: component,
		Operation: operation,
		Path:      path,
		Timestamp: time.Now(),
	}
}

// Wrap creates an OverlayError around an existing cause.
func Wrap(code ErrorCode, component, operation, path string, cause error) *OverlayError {
	e := New(code, component, operation, path)
	e.Cause = cause
	return e
}

// Error implements the error interface.
func (e *OverlayError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s:%s] %s (%s): %v", e.Component, e.Operation, e.Code, e.Path, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Code, e.Cause)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *OverlayError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, &OverlayError{Code: ...}) comparisons by code.
func (e *OverlayError) Is(target error) bool {
	other, ok := target.(*OverlayError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// Errno maps the error back to the syscall.Errno the FUSE transport expects,
// preferring an errno embedded in the wrapped cause (the common case: a
// host filesystem call failed) and falling back to a code-specific default.
func (e *OverlayError) Errno() syscall.Errno {
	var errno syscall.Errno
	if e.Cause != nil && goerrors.As(e.Cause, &errno) {
		return errno
	}
	switch e.Code {
	case ErrCodeNotFound:
		return syscall.ENOENT
	case ErrCodePermission:
		return syscall.EACCES
	case ErrCodeUnsupported:
		return syscall.ENOTSUP
	case ErrCodeInvalidArgument, ErrCodeNotAbsolutePath:
		return syscall.EINVAL
	case ErrCodeHistoryCorrupt, ErrCodeVersionLimitReached:
		return syscall.EIO
	default:
		return syscall.EIO
	}
}

// Errno extracts the syscall.Errno to return to the FUSE transport for any
// error value: an *OverlayError is asked for its mapped errno, a bare
// syscall.Errno is returned as-is, and anything else becomes EIO.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	if oe, ok := err.(*OverlayError); ok {
		return oe.Errno()
	}
	var errno syscall.Errno
	if goerrors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
