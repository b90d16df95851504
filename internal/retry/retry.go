// Package retry runs an operation up to a fixed attempt cap with exponential
// backoff. Only errors the fault package marks retryable earn another
// attempt; a rate-limited upstream's requested wait overrides the backoff.
package retry

import (
	"context"
	"time"

	"github.com/marketbrief/marketbrief/internal/fault"
)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// Do invokes fn until it succeeds, returns a non-retryable error, or the
// attempt cap is reached. It returns the number of attempts actually made
// alongside the final error.
func Do(ctx context.Context, cfg *Config, op string, fn func() error) (int, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return attempt, nil
		}
		if !fault.Retryable(err) || attempt == cfg.MaxAttempts {
			return attempt, err
		}

		delay := cfg.backoff(attempt)
		if ra := fault.RetryAfter(err); ra > 0 {
			delay = ra
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return cfg.MaxAttempts, err
}

func (c *Config) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * pow(c.Multiplier, attempt-1))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
