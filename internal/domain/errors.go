package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the setup wizard.
var (
	ErrInvalidURL          = fmt.Errorf("invalid gateway url")
	ErrNetwork             = fmt.Errorf("network error")
	ErrKeyValidationFailed = fmt.Errorf("api key validation failed")
	ErrSaveFailed          = fmt.Errorf("configuration save failed")
	ErrUnknown             = fmt.Errorf("unknown error")

	// Controller guards.
	ErrBusy         = fmt.Errorf("another operation is in progress")
	ErrPrecondition = fmt.Errorf("required field missing")
	ErrNotSaved     = fmt.Errorf("configuration has not been saved")
	ErrClosed       = fmt.Errorf("wizard closed")
	ErrLaunchFailed = fmt.Errorf("launch failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Validation.GatewayURL")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for logs and exit codes.
type ErrorCode string

const (
	CodeUnknown             ErrorCode = "UNKNOWN"
	CodeInvalidURL          ErrorCode = "INVALID_URL"
	CodeNetwork             ErrorCode = "NETWORK_ERROR"
	CodeKeyValidationFailed ErrorCode = "KEY_VALIDATION_FAILED"
	CodeSaveFailed          ErrorCode = "SAVE_FAILED"
	CodeBusy                ErrorCode = "BUSY"
	CodePrecondition        ErrorCode = "PRECONDITION"
	CodeNotSaved            ErrorCode = "NOT_SAVED"
	CodeClosed              ErrorCode = "CLOSED"
	CodeLaunchFailed        ErrorCode = "LAUNCH_FAILED"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrInvalidURL:          CodeInvalidURL,
	ErrNetwork:             CodeNetwork,
	ErrKeyValidationFailed: CodeKeyValidationFailed,
	ErrSaveFailed:          CodeSaveFailed,
	ErrUnknown:             CodeUnknown,
	ErrBusy:                CodeBusy,
	ErrPrecondition:        CodePrecondition,
	ErrNotSaved:            CodeNotSaved,
	ErrClosed:              CodeClosed,
	ErrLaunchFailed:        CodeLaunchFailed,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}

// Describe renders err as the message shown to the user in the wizard.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	detail := err.Error()
	var de *DomainError
	if errors.As(err, &de) && de.Detail != "" {
		detail = de.Detail
	}

	switch ErrorCodeOf(err) {
	case CodeInvalidURL, CodeNetwork:
		return "Invalid Gateway URL: " + detail
	case CodeKeyValidationFailed:
		return "API Key Validation Failed: " + detail
	case CodeSaveFailed:
		return "Configuration Save Failed: " + detail
	case CodePrecondition, CodeBusy, CodeNotSaved, CodeClosed:
		return detail
	case CodeLaunchFailed:
		return "Launch Failed: " + detail
	default:
		return "Unexpected error: " + detail
	}
}
