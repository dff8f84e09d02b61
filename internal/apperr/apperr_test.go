package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Unauthorized("not project owner"), KindUnauthorized},
		{Validation("title is required"), KindValidation},
		{NotFound("risk/issue not found"), KindNotFound},
		{Conflict("version mismatch"), KindConflict},
		{Transient("store unavailable", errors.New("dial tcp")), KindTransient},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}

	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("setStatus: %w", Unauthorized("not project owner"))
	if KindOf(err) != KindUnauthorized {
		t.Fatalf("wrapped error lost its kind: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(Validation("bad enum")) {
		t.Error("validation errors must never be retried")
	}
	if IsRetryable(Unauthorized("nope")) {
		t.Error("unauthorized errors must never be retried")
	}
	if !IsRetryable(Transient("poll failed", errors.New("timeout"))) {
		t.Error("transient errors should be retryable")
	}
}

func TestTransientUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient("listing activity failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected Transient to wrap its cause")
	}
}
