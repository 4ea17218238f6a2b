package stamp

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"remote keeps status and body", NewRemoteError(404, "outside footprint"), "remote error (status 404): outside footprint"},
		{"auth", NewAuthError("username is required"), "auth error: username is required"},
		{"invalid stack", NewInvalidStackError(2), "invalid_stack error: composition needs 3 bands, stack has 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShapeMismatchError(t *testing.T) {
	err := NewShapeMismatchError(100, 100, 100, 99)
	if err.Kind != KindShapeMismatch {
		t.Errorf("Kind = %q, want %q", err.Kind, KindShapeMismatch)
	}
	if !strings.Contains(err.Error(), "100x100") || !strings.Contains(err.Error(), "100x99") {
		t.Errorf("Error() = %q, want both dimensions reported", err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError(cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(NewRemoteError(500, "boom")); got != KindRemote {
		t.Errorf("KindOf(remote) = %q, want %q", got, KindRemote)
	}
	wrapped := fmt.Errorf("fetch hsc: %w", NewAuthError("rejected"))
	if got := KindOf(wrapped); got != KindAuth {
		t.Errorf("KindOf(wrapped auth) = %q, want %q", got, KindAuth)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}
