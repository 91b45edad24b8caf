package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUnauthenticated    = errors.New("not signed in")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrApprovalPending  = errors.New("account approval pending")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Notification errors
	ErrNotificationFailed = errors.New("notification failed")
)

// Placement errors
var (
	ErrDriveNotFound = &CustomError{Err: ErrResourceNotFound, Message: "placement drive not found", Code: "DRIVE_NOT_FOUND"}
	ErrDriveClosed   = &CustomError{Err: ErrConflict, Message: "this placement drive is no longer accepting applications", Code: "DRIVE_CLOSED"}
	ErrNotEligible   = &CustomError{Err: ErrPermissionDenied, Message: "you do not meet the eligibility criteria for this drive", Code: "NOT_ELIGIBLE"}

	ErrApplicationNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "application not found", Code: "APPLICATION_NOT_FOUND"}
	ErrDuplicateApplication = &CustomError{Err: ErrResourceAlreadyExists, Message: "you have already applied to this drive", Code: "DUPLICATE_APPLICATION"}
	ErrInvalidStatus        = &CustomError{Err: ErrValidationFailed, Message: "invalid application status", Code: "INVALID_STATUS"}

	ErrProfileNotFound = &CustomError{Err: ErrResourceNotFound, Message: "profile not found", Code: "PROFILE_NOT_FOUND"}
)

// Approval errors
var (
	ErrApprovalRequestNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "approval request not found", Code: "APPROVAL_NOT_FOUND"}
	ErrRequestAlreadyResolved   = &CustomError{Err: ErrConflict, Message: "approval request has already been resolved", Code: "APPROVAL_RESOLVED"}
	ErrApprovalPartiallyApplied = errors.New("approval recorded but the student profile was not updated")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying details
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithCode returns a copy of the error carrying code
func (e *CustomError) WithCode(code string) *CustomError {
	cp := *e
	cp.Code = code
	return &cp
}

// Message extracts the user-facing message of the first CustomError in the
// chain, or fallback when there is none.
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// Code extracts the code of the first CustomError in the chain.
func Code(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
