package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidArgument, "entity name is empty")

	var customErr *E
	if !errors.As(err, &customErr) {
		t.Fatal("Error should be of type *E")
	}
	if customErr.Code != CodeInvalidArgument {
		t.Errorf("Expected code %s, got %s", CodeInvalidArgument, customErr.Code)
	}
	if err.Error() != "INVALID_ARGUMENT: entity name is empty" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestWrapIncludesOp(t *testing.T) {
	originalErr := errors.New("template: missing key")
	wrappedErr := Wrap(CodeInternal, "generators.Backend", originalErr)

	if !strings.Contains(wrappedErr.Error(), "[generators.Backend]") {
		t.Errorf("Expected op in message, got %q", wrappedErr.Error())
	}
	if errors.Unwrap(wrappedErr) != originalErr {
		t.Error("Unwrap should return original error")
	}
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("exit status 1")
	err := Wrapf(CodeAborted, "toolrunner.Exec", originalErr, "flutter create %s", "shop_app")

	want := "ABORTED [toolrunner.Exec]: flutter create shop_app: exit status 1"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "custom error with code",
			err:      New(CodeInvalidArgument, "test"),
			expected: CodeInvalidArgument,
		},
		{
			name:     "wrapped in fmt error",
			err:      fmt.Errorf("bootstrap: %w", Wrap(CodeUnavailable, "op", errors.New("not found"))),
			expected: CodeUnavailable,
		},
		{
			name:     "standard error",
			err:      errors.New("standard error"),
			expected: "",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := CodeOf(tt.err); code != tt.expected {
				t.Errorf("Expected code %q, got %q", tt.expected, code)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := Build(CodeInternal).
		WithOp("projectfs.WriteFile").
		WithErr(originalErr).
		WithMsgf("write %s", "shop/backend/pom.xml").
		WithDetails("path", "shop/backend/pom.xml").
		Err()

	var customErr *E
	if !errors.As(err, &customErr) {
		t.Fatal("Error should be of type *E")
	}
	if customErr.Op != "projectfs.WriteFile" {
		t.Errorf("Expected op %q, got %q", "projectfs.WriteFile", customErr.Op)
	}
	if len(customErr.Details) != 2 {
		t.Errorf("Expected 2 details, got %d", len(customErr.Details))
	}
	if !IsCode(err, CodeInternal) {
		t.Error("Expected IsCode to match CodeInternal")
	}
}
