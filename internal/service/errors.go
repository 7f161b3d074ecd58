package service

import "errors"

// Sentinel errors returned by services. Handlers map these to response
// error codes; nothing below the handler layer leaks raw storage errors.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrNotEnrolled          = errors.New("course not purchased")
	ErrQuizInactive         = errors.New("quiz is not active")
	ErrAlreadySubmitted     = errors.New("attempt already submitted")
	ErrPrerequisiteNotMet   = errors.New("prerequisite lecture not completed")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrTimeLimitExceeded    = errors.New("time limit exceeded")
	ErrInvalidQuestionType  = errors.New("question is not reviewable")
	ErrEmailTaken           = errors.New("email already registered")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// ValidationError carries per-field violations from semantic validation
// that binding tags cannot express (e.g. type-dependent question fields).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a ValidationError from a field violation map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
