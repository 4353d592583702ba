package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "message only",
			err: &Error{
				Code:    EINVALID,
				Message: "invalid input",
			},
			expected: "invalid input",
		},
		{
			name: "with operation",
			err: &Error{
				Code:    EINVALID,
				Op:      "session.submit",
				Message: "invalid input",
			},
			expected: "session.submit: invalid input",
		},
		{
			name: "with wrapped error",
			err: &Error{
				Code:    EUNAVAILABLE,
				Op:      "address.lookup",
				Message: "Failed to fetch addresses",
				Err:     errors.New("connection refused"),
			},
			expected: "address.lookup: Failed to fetch addresses: connection refused",
		},
		{
			name: "wrapped error without op",
			err: &Error{
				Code:    EINTERNAL,
				Message: "failed to save",
				Err:     errors.New("database connection failed"),
			},
			expected: "failed to save: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:    EINTERNAL,
		Message: "wrapped",
		Err:     underlying,
	}

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", unwrapped, underlying)
	}

	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find underlying error")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"domain error", Invalid("op", "bad"), EINVALID},
		{"wrapped domain error", fmt.Errorf("outer: %w", NotFound("op", "gone")), ENOTFOUND},
		{"plain error", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"invalid shows message", Invalid("op", "No address selected"), "No address selected"},
		{"unavailable shows message", Unavailable(errors.New("dial tcp"), "op", "Failed to fetch addresses"), "Failed to fetch addresses"},
		{"internal hides message", Internal(errors.New("pg down"), "op", "insert failed"), InternalMessage},
		{"plain error hidden", errors.New("secret detail"), InternalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorOp(t *testing.T) {
	if got := ErrorOp(Invalid("session.submit", "x")); got != "session.submit" {
		t.Errorf("ErrorOp() = %q, want %q", got, "session.submit")
	}
	if got := ErrorOp(errors.New("plain")); got != "" {
		t.Errorf("ErrorOp(plain) = %q, want empty", got)
	}
	if got := ErrorOp(nil); got != "" {
		t.Errorf("ErrorOp(nil) = %q, want empty", got)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(EINVALID, "form.update", "unknown field: %s", "nickname")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("Errorf should return *Error")
	}
	if e.Message != "unknown field: nickname" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Code != EINVALID || e.Op != "form.update" {
		t.Errorf("Code/Op = %q/%q", e.Code, e.Op)
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NotFound("op", "missing"), ENOTFOUND) {
		t.Error("IsCode should match ENOTFOUND")
	}
	if IsCode(NotFound("op", "missing"), EINVALID) {
		t.Error("IsCode should not match EINVALID")
	}
	if !IsCode(errors.New("plain"), EINTERNAL) {
		t.Error("plain errors report EINTERNAL")
	}
}
