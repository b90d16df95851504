package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketbrief/marketbrief/internal/fault"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDoStopsAtAttemptCap(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), testConfig(3), "op", func() error {
		calls++
		return &fault.TransportError{Op: "op", Err: errors.New("down")}
	})
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 calls, got %d", calls)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts reported, got %d", attempts)
	}
}

func TestDoReturnsOnSuccess(t *testing.T) {
	calls := 0
	attempts, err := Do(context.Background(), testConfig(5), "op", func() error {
		calls++
		if calls < 3 {
			return &fault.TransportError{Op: "op", Err: errors.New("flaky")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected success on attempt 3, got %d", attempts)
	}
}

func TestDoDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	terminal := errors.New("bad request")
	attempts, err := Do(context.Background(), testConfig(4), "op", func() error {
		calls++
		return terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error back, got %v", err)
	}
	if calls != 1 || attempts != 1 {
		t.Fatalf("terminal error must not be retried, got %d calls", calls)
	}
}

func TestDoRetriesRateLimits(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testConfig(2), "op", func() error {
		calls++
		if calls == 1 {
			return &fault.RateLimitError{Op: "op", RetryAfter: time.Millisecond, Err: errors.New("429")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected rate limit to be retried, got %d calls", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, testConfig(3), "op", func() error {
		calls++
		return &fault.TransportError{Op: "op", Err: errors.New("down")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retry after cancellation, got %d calls", calls)
	}
}
