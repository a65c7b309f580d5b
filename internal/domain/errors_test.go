package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Validation.GatewayURL", ErrInvalidURL, "missing host")
	want := "Validation.GatewayURL: missing host: invalid gateway url"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Store.Save", ErrSaveFailed, "")
	want := "Store.Save: configuration save failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("op", ErrNetwork, "timeout")
	if !errors.Is(err, ErrNetwork) {
		t.Error("expected errors.Is to find ErrNetwork")
	}
}

func TestDomainErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewDomainError("Validation.APIKey", ErrKeyValidationFailed, "too short"))
	var de *DomainError
	if !errors.As(wrapped, &de) {
		t.Fatal("expected errors.As to find DomainError")
	}
	if de.Op != "Validation.APIKey" {
		t.Errorf("Op = %q", de.Op)
	}
}

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"sentinel", ErrInvalidURL, CodeInvalidURL},
		{"domain error", NewDomainError("op", ErrNetwork, "x"), CodeNetwork},
		{"wrapped", fmt.Errorf("ctx: %w", ErrSaveFailed), CodeSaveFailed},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewDomainError("op", ErrBusy, "")), CodeBusy},
		{"foreign", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCodeOf(tt.err); got != tt.want {
				t.Errorf("ErrorCodeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Code(t *testing.T) {
	err := NewDomainError("op", ErrPrecondition, "x")
	if err.Code() != CodePrecondition {
		t.Errorf("Code() = %q", err.Code())
	}
}

func TestAllSentinelsHaveCodes(t *testing.T) {
	sentinels := []error{
		ErrInvalidURL, ErrNetwork, ErrKeyValidationFailed, ErrSaveFailed, ErrUnknown,
		ErrBusy, ErrPrecondition, ErrNotSaved, ErrClosed, ErrLaunchFailed,
	}
	for _, s := range sentinels {
		if _, ok := errorCodeMap[s]; !ok {
			t.Errorf("sentinel %q has no error code", s)
		}
	}
}

func TestWrapOp(t *testing.T) {
	if WrapOp("op", nil) != nil {
		t.Error("WrapOp(nil) should be nil")
	}
	err := WrapOp("Store.Save", ErrSaveFailed)
	if err.Error() != "Store.Save: configuration save failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if ErrorCodeOf(err) != CodeSaveFailed {
		t.Errorf("code lost through WrapOp: %q", ErrorCodeOf(err))
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"invalid url", NewDomainError("op", ErrInvalidURL, "URL must include a scheme and host"), "Invalid Gateway URL: URL must include a scheme and host"},
		{"network", NewDomainError("op", ErrNetwork, "connection timed out"), "Invalid Gateway URL: connection timed out"},
		{"key", NewDomainError("op", ErrKeyValidationFailed, "API key is too short (minimum 10 characters)"), "API Key Validation Failed: API key is too short (minimum 10 characters)"},
		{"save", NewDomainError("op", ErrSaveFailed, "disk full"), "Configuration Save Failed: disk full"},
		{"precondition", NewDomainError("op", ErrPrecondition, "Please enter an API key"), "Please enter an API key"},
		{"launch", NewDomainError("op", ErrLaunchFailed, "exit status 1"), "Launch Failed: exit status 1"},
		{"foreign", errors.New("boom"), "Unexpected error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe = %q, want %q", got, tt.want)
			}
		})
	}
}
