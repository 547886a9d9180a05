package pozeclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantType string
	}{
		{"network failure", Result{Error: "dial tcp: refused", Status: 0}, ErrorTypeNetwork},
		{"unauthorized", Result{Error: "Unauthorized", Status: 401}, ErrorTypeAuth},
		{"server error", Result{Error: "Internal Server Error", Status: 500}, ErrorTypeHTTP},
		{"client error", Result{Error: "Bad Request", Status: 400}, ErrorTypeHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ResultError(tt.result)
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Expected *Error, got %T", err)
			}
			if e.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, e.Type)
			}
			if e.Status != tt.result.Status {
				t.Errorf("Expected status %d, got %d", tt.result.Status, e.Status)
			}
		})
	}
}

func TestResultErrorNilOnSuccess(t *testing.T) {
	if err := ResultError(Result{Status: 200}); err != nil {
		t.Errorf("Expected nil error for successful result, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", newError(ErrorTypeNetwork, "refused", 0, nil), true},
		{"500", newError(ErrorTypeHTTP, "boom", 500, nil), true},
		{"429", newError(ErrorTypeHTTP, "slow down", 429, nil), true},
		{"404", newError(ErrorTypeHTTP, "Not Found", 404, nil), false},
		{"auth", newError(ErrorTypeAuth, "Unauthorized", 401, nil), false},
		{"validation", newError(ErrorTypeValidation, "bad phone", 0, nil), false},
		{"plain error", errors.New("whatever"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(newError(ErrorTypeAuth, "Unauthorized", 401, nil)) {
		t.Error("Expected auth error detected")
	}
	if IsAuthError(newError(ErrorTypeHTTP, "Forbidden", 403, nil)) {
		t.Error("Expected 403 not classified as auth error")
	}
	wrapped := fmt.Errorf("query failed: %w", newError(ErrorTypeAuth, "Unauthorized", 401, nil))
	if !IsAuthError(wrapped) {
		t.Error("Expected wrapped auth error detected")
	}
}

func TestErrorString(t *testing.T) {
	e := newError(ErrorTypeHTTP, "Not Found", 404, nil)
	want := "HTTP: Not Found (status 404)"
	if e.Error() != want {
		t.Errorf("Expected %q, got %q", want, e.Error())
	}

	cause := errors.New("underlying")
	e = newError(ErrorTypeNoData, "empty response payload", 0, cause)
	if !errors.Is(e, cause) {
		t.Error("Expected Unwrap to expose cause")
	}
}

func TestErrorIsComparesTypes(t *testing.T) {
	a := newError(ErrorTypeNetwork, "a", 0, nil)
	b := newError(ErrorTypeNetwork, "b", 0, nil)
	if !errors.Is(a, b) {
		t.Error("Expected same-type errors to match")
	}
	c := newError(ErrorTypeHTTP, "c", 500, nil)
	if errors.Is(a, c) {
		t.Error("Expected different-type errors not to match")
	}
}
