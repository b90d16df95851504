package fault

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&TransportError{Op: "x", Err: errors.New("timeout")}, true},
		{&RateLimitError{Op: "x", Err: errors.New("429")}, true},
		{fmt.Errorf("wrapped: %w", &TransportError{Op: "x", Err: errors.New("down")}), true},
		{&ValidationError{Stage: "analysis", Reason: "bad shape"}, false},
		{&DeliveryError{Locale: "ar", Err: errors.New("forbidden")}, false},
		{errors.New("plain"), false},
	}

	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("Retryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestFromStatus(t *testing.T) {
	if err := FromStatus("op", 200, "", 0); err != nil {
		t.Fatalf("200 must be success, got %v", err)
	}

	err := FromStatus("op", 429, "slow down", 3*time.Second)
	var re *RateLimitError
	if !errors.As(err, &re) {
		t.Fatalf("429 must classify as RateLimitError, got %T", err)
	}
	if re.RetryAfter != 3*time.Second {
		t.Fatalf("expected retry-after 3s, got %v", re.RetryAfter)
	}

	var te *TransportError
	if !errors.As(FromStatus("op", 503, "unavailable", 0), &te) {
		t.Fatalf("503 must classify as TransportError")
	}

	err = FromStatus("op", 400, "bad request", 0)
	if err == nil || Retryable(err) {
		t.Fatalf("400 must be a terminal error, got %v", err)
	}
}

func TestRetryAfterOnOtherErrors(t *testing.T) {
	if d := RetryAfter(errors.New("plain")); d != 0 {
		t.Fatalf("expected zero retry-after, got %v", d)
	}
}
