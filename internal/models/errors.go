package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used across services. Wrap with fmt.Errorf("...: %w", Err...).
var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
	ErrBanned    = errors.New("user is banned")
	ErrInvalid   = errors.New("invalid input")
)

// Validation errors
var (
	ErrTitleRequired    = fmt.Errorf("%w: title is required", ErrInvalid)
	ErrTitleTooLong     = fmt.Errorf("%w: title is too long", ErrInvalid)
	ErrContentRequired  = fmt.Errorf("%w: content is required", ErrInvalid)
	ErrContentTooLong   = fmt.Errorf("%w: content is too long", ErrInvalid)
	ErrTooManyTags      = fmt.Errorf("%w: too many tags", ErrInvalid)
	ErrInvalidParent    = fmt.Errorf("%w: invalid parent", ErrInvalid)
	ErrUsernameInvalid  = fmt.Errorf("%w: username must be 3-32 characters", ErrInvalid)
	ErrPasswordTooShort = fmt.Errorf("%w: password is too short", ErrInvalid)
	ErrEmailRequired    = fmt.Errorf("%w: email is required", ErrInvalid)
)

// ModerationRejectedError is returned when automod rejects content.
// When the classifier flagged the content, an offence record has already been
// written by the time the caller sees this error.
type ModerationRejectedError struct {
	Reason string
}

func (e *ModerationRejectedError) Error() string {
	return "content flagged: " + e.Reason
}

// StorageError reports that a store operation failed, as opposed to the
// requested entity being absent.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage error in " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it is nil or already a domain error
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsModerationRejected reports whether err is a ModerationRejectedError
func IsModerationRejected(err error) bool {
	var mre *ModerationRejectedError
	return errors.As(err, &mre)
}

// IsStorageError reports whether err is a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
