package errors

import (
	"errors"
	"fmt"
)

// AppErrorType classifies the handful of ways a load-test run can fail, per
// the error taxonomy in the driver's design: setup/teardown failures abort
// the run, everything else is counted rather than propagated.
type AppErrorType string

const (
	SetupError     AppErrorType = "SETUP_ERROR"
	TeardownError  AppErrorType = "TEARDOWN_ERROR"
	IterationError AppErrorType = "ITERATION_ERROR"
	ConflictError  AppErrorType = "CONFLICT_ERROR"
	ConfigError    AppErrorType = "CONFIG_ERROR"
	InternalError  AppErrorType = "INTERNAL_ERROR"
)

// AppError wraps an underlying error with a stable type, for callers that
// need to branch on "is this a setup failure" without string matching.
type AppError struct {
	Err     error        `json:"-"`
	Type    AppErrorType `json:"type"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(errorType AppErrorType, message, details string, err error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Details: details,
		Err:     err,
	}
}

func NewSetupError(message string, err error) *AppError {
	return NewAppError(SetupError, message, "", err)
}

func NewTeardownError(message string, err error) *AppError {
	return NewAppError(TeardownError, message, "", err)
}

func NewIterationError(message string, err error) *AppError {
	return NewAppError(IterationError, message, "", err)
}

func NewConflictError(message string) *AppError {
	return NewAppError(ConflictError, message, "", nil)
}

func NewConfigError(message, details string) *AppError {
	return NewAppError(ConfigError, message, details, nil)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func GetErrorType(err error) AppErrorType {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type
	}
	return InternalError
}

// IsConflict returns true if err is (or wraps) an *AppError of type
// ConflictError, as built by NewConflictError. A *ledger.ConflictError
// returned by a ledger Sink is a different type and is not matched.
func IsConflict(err error) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type == ConflictError
	}
	return false
}
