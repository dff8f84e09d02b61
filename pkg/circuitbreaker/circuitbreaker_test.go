package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	b := New(Config{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("open breaker must reject, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})

	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errBoom })

	if b.State() != StateClosed {
		t.Fatalf("non-consecutive failures must not open the breaker, state = %v", b.State())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Millisecond})

	_ = b.Execute(func() error { return errBoom })
	if b.State() != StateOpen {
		t.Fatal("expected open")
	}

	time.Sleep(5 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("half-open probe %d rejected: %v", i, err)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed after recovery", b.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Millisecond})

	_ = b.Execute(func() error { return errBoom })
	time.Sleep(5 * time.Millisecond)

	_ = b.Execute(func() error { return errBoom })
	if b.State() != StateOpen {
		t.Fatalf("half-open failure must reopen, state = %v", b.State())
	}
}
