package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "wrapped deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: true},
		{name: "net timeout", err: fmt.Errorf("dial: %w", timeoutErr{}), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Timeout(tt.err); got != tt.want {
				t.Errorf("Timeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "network", err: fmt.Errorf("%w: HTTP 404 error: Not Found", ErrNetwork), want: "HTTP 404 error: Not Found"},
		{name: "api", err: fmt.Errorf("%w: username cannot be empty", ErrAPI), want: "username cannot be empty"},
		{name: "unclassified", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	err := fmt.Errorf("%w: no content", ErrParsing)
	if !errors.Is(err, ErrParsing) {
		t.Fatal("expected ErrParsing")
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrAPI) {
		t.Fatal("parsing error classified as another kind")
	}
}
