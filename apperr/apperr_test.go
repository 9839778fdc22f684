package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{NotFound, http.StatusNotFound},
		{InvalidInput, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.Status(); got != tc.want {
			t.Errorf("Kind(%d).Status() = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := NewNotFound("category not found")
	wrapped := fmt.Errorf("search: %w", base)

	if KindOf(wrapped) != NotFound {
		t.Fatalf("KindOf = %v", KindOf(wrapped))
	}
	if Message(wrapped) != "category not found" {
		t.Fatalf("Message = %q", Message(wrapped))
	}
	if !errors.Is(wrapped, NewNotFound("category not found")) {
		t.Fatal("errors.Is should match same kind and message")
	}
	if errors.Is(wrapped, NewNotFound("product not found")) {
		t.Fatal("errors.Is should not match a different message")
	}
	if errors.Is(wrapped, NewConflict("category not found")) {
		t.Fatal("errors.Is should not match a different kind")
	}
}

func TestForeignErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != Internal {
		t.Fatal("foreign errors must be internal")
	}
	if Message(err) != "internal server error" {
		t.Fatalf("Message = %q", Message(err))
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := NewInternal("could not load cart", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable")
	}
	if err.Error() != "could not load cart: db down" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
