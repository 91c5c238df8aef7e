package errors

import (
	"errors"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	e := New(ErrorTypeAuth, "login indicators never resolved")
	want := "auth error: login indicators never resolved"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	e := Wrap(ErrorTypeStore, "mongo ping failed", cause)

	if !errors.Is(e, cause) {
		t.Error("expected wrapped error to match cause with errors.Is")
	}

	var typed *Error
	if !errors.As(error(e), &typed) {
		t.Fatal("expected errors.As to find *Error")
	}
	if typed.Type != ErrorTypeStore {
		t.Errorf("got type %s, want %s", typed.Type, ErrorTypeStore)
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []ErrorType{ErrorTypeAuth, ErrorTypeExtraction, ErrorTypeStore, ErrorTypeUnknown}
	for _, typ := range fatal {
		if !IsFatal(typ) {
			t.Errorf("expected %s to be fatal", typ)
		}
	}

	nonFatal := []ErrorType{ErrorTypeResolutionMiss, ErrorTypeRowValidation, ErrorTypeNavigation}
	for _, typ := range nonFatal {
		if IsFatal(typ) {
			t.Errorf("expected %s to be non-fatal", typ)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeStore) || !IsRetryable(ErrorTypeNavigation) {
		t.Error("store and navigation errors should be retryable")
	}
	if IsRetryable(ErrorTypeAuth) {
		t.Error("auth errors must never be retried within a run")
	}
}
