// Package fault defines the error taxonomy shared by every pipeline stage.
// The retry layer only looks at two questions: is the error retryable, and
// did the upstream ask us to wait.
package fault

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigError reports every missing required setting at once.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// TransportError is a network or upstream availability failure. Retryable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError is an upstream 429. Retryable, optionally carrying the wait
// the upstream asked for.
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s: %v", e.Op, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: rate limited: %v", e.Op, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ValidationError means a stage produced output that violates its contract
// (malformed summary shape, corrupted numerals). Retrying the same request
// blindly will not help; the stage owns its own corrective step.
type ValidationError struct {
	Stage  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid output: %s", e.Stage, e.Reason)
}

// DeliveryError is a terminal per-locale distribution failure, such as the
// bot being removed from the channel.
type DeliveryError struct {
	Locale string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s: %v", e.Locale, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt at the same operation can
// reasonably succeed.
func Retryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var re *RateLimitError
	return errors.As(err, &re)
}

// RetryAfter extracts the upstream-requested wait, or zero.
func RetryAfter(err error) time.Duration {
	var re *RateLimitError
	if errors.As(err, &re) {
		return re.RetryAfter
	}
	return 0
}

// FromStatus classifies an HTTP response status: 2xx is success, 429 is a
// rate limit, 5xx is transport, any other 4xx is terminal.
func FromStatus(op string, status int, body string, retryAfter time.Duration) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 429:
		return &RateLimitError{Op: op, RetryAfter: retryAfter, Err: fmt.Errorf("status 429: %s", body)}
	case status >= 500:
		return &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", status, body)}
	default:
		return fmt.Errorf("%s: status %d: %s", op, status, body)
	}
}
