package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// them under errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
)

// Error is a classified service error. Message is safe to show to users
// for every kind except ErrStorage.
type Error struct {
	kind    error
	message string
	base    *Error
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Message returns the user-facing reason without the cause.
func (e *Error) Message() string {
	return e.message
}

// Kind returns the sentinel the error is classified under.
func (e *Error) Kind() error {
	return e.kind
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Is matches the declared error a detailed copy was made from.
func (e *Error) Is(target error) bool {
	return e.base != nil && target == error(e.base)
}

func newError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

// withDetail returns a copy of base whose message carries extra detail.
// The copy still matches base and base's kind under errors.Is.
func withDetail(base *Error, format string, args ...any) *Error {
	return &Error{
		kind:    base.kind,
		message: base.message + ": " + fmt.Sprintf(format, args...),
		base:    base,
	}
}

// storageError hides err behind a generic message.
func storageError(op string, err error) error {
	return &Error{kind: ErrStorage, message: "failed to " + op, cause: err}
}

// UserMessage returns the text a caller may show for err.
func UserMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.kind != ErrStorage {
		return svcErr.message
	}
	return "Internal server error"
}

var (
	// Auth
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid email or password")
	ErrInvalidToken       = newError(ErrUnauthenticated, "could not validate token")
	ErrMissingToken       = newError(ErrUnauthenticated, "not authenticated")
	ErrTokenExpired       = newError(ErrUnauthenticated, "token has expired")
	ErrAdminRequired      = newError(ErrForbidden, "this action is available to administrators only")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrEmailTaken         = newError(ErrConflict, "an account with this email already exists")
	ErrInvalidName        = newError(ErrValidation, "name must be at least 2 characters")
	ErrInvalidEmail       = newError(ErrValidation, "invalid email")
	ErrInvalidPassword    = newError(ErrValidation, "password length is out of range")

	// Tasks
	ErrTaskNotFound       = newError(ErrNotFound, "task not found")
	ErrTitleEmpty         = newError(ErrValidation, "task title cannot be empty")
	ErrTitleTooLong       = newError(ErrValidation, "task title is too long")
	ErrDuplicateTask      = newError(ErrConflict, "a task with this title already exists")
	ErrInvalidStatus      = newError(ErrValidation, "invalid task status")
	ErrInvalidPriority    = newError(ErrValidation, "invalid task priority")
	ErrDeadlineInPast     = newError(ErrValidation, "deadline cannot be in the past")
	ErrUnresolvedCategory = newError(ErrValidation, "one or more categories were not found")

	// Categories
	ErrCategoryNotFound   = newError(ErrNotFound, "category not found")
	ErrEmptyCategoryTitle = newError(ErrValidation, "category title cannot be empty")
	ErrCategoryTooLong    = newError(ErrValidation, "category title is too long")
	ErrDuplicateCategory  = newError(ErrConflict, "category already exists")

	ErrCategorySelectors = newError(ErrValidation, "categories may be given by id or by title, not both")

	// AI drafting
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAIRequestFailed        = errors.New("AI request failed")
	ErrAITextEmpty            = newError(ErrValidation, "text is required")
	ErrAITextTooLong          = newError(ErrValidation, "text is too long")
	ErrAINoTasksGenerated     = newError(ErrValidation, "AI did not generate any tasks")
	ErrAINoValidTasks         = newError(ErrValidation, "no valid tasks could be created from AI output")
)

// classify passes classified errors through and treats anything else as a
// storage failure of op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return storageError(op, err)
}
