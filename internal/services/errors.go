package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfirmed is returned by destructive actions submitted without the
// explicit confirmation step.
var ErrNotConfirmed = errors.New("action not confirmed")

// FieldError is one rejected form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is returned before any store call when input is rejected.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// For returns the message for field, or "".
func (v ValidationErrors) For(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// AttachmentError means a selected file could not be encoded.
type AttachmentError struct {
	Field string
	Err   error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s: %v", e.Field, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// ErrAttachmentTooLarge is wrapped by AttachmentError when a file exceeds the limit.
var ErrAttachmentTooLarge = errors.New("file too large")

// ErrAttachmentReselect is wrapped by AttachmentError when a file failed to
// encode and has not been chosen again or removed since.
var ErrAttachmentReselect = errors.New("file must be chosen again")
