package client

import (
	"errors"
	"fmt"
)

// UploadServerError represents a failed upload. Recoverable failures
// (network errors, server-side errors) are worth retrying from the pending
// queue; non-recoverable ones are client-side and would fail again.
type UploadServerError struct {
	IsRecoverable bool
	InnerError    error
}

func (e *UploadServerError) Error() string {
	if e.InnerError != nil {
		return fmt.Sprintf("Error during upload: %v", e.InnerError)
	}
	return "Error during upload"
}

func (e *UploadServerError) Unwrap() error {
	return e.InnerError
}

// NewRecoverableUploadError creates a new recoverable UploadServerError
func NewRecoverableUploadError(inner error) *UploadServerError {
	return &UploadServerError{
		IsRecoverable: true,
		InnerError:    inner,
	}
}

// NewNonRecoverableUploadError creates a new non-recoverable UploadServerError
func NewNonRecoverableUploadError(inner error) *UploadServerError {
	return &UploadServerError{
		IsRecoverable: false,
		InnerError:    inner,
	}
}

// IsUploadServerError checks if the error is an UploadServerError
func IsUploadServerError(err error) bool {
	var serverErr *UploadServerError
	return errors.As(err, &serverErr)
}

// IsRecoverableUploadError returns true if the error is recoverable (not a client-side error)
func IsRecoverableUploadError(err error) bool {
	var serverErr *UploadServerError
	if errors.As(err, &serverErr) {
		return serverErr.IsRecoverable
	}
	return false
}
