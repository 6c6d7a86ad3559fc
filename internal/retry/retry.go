// Package retry implements bounded retry with exponential or fixed backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Policy holds retry configuration
type Policy struct {
	MaxRetries   int           // Retries after the first attempt
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Upper bound on any delay
	Multiplier   float64       // Backoff multiplier, 1 for a fixed delay
	Jitter       float64       // Fraction of the delay randomised in both directions

	// Notify, when set, is called before each retry.
	Notify func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the exponential policy used for network delivery.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Fixed returns a policy making at most attempts tries with the same delay between them.
func Fixed(attempts int, delay time.Duration) *Policy {
	if attempts < 1 {
		attempts = 1
	}
	return &Policy{
		MaxRetries:   attempts - 1,
		InitialDelay: delay,
		MaxDelay:     delay,
		Multiplier:   1,
	}
}

// Attempts returns the total number of tries the policy allows.
func (p *Policy) Attempts() int {
	return p.MaxRetries + 1
}

// Backoff calculates the delay before the given retry attempt
func (p *Policy) Backoff(attempt int) time.Duration {
	if attempt <= 0 || p.InitialDelay <= 0 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	// Exponential: delay = initialDelay * (multiplier ^ (attempt-1))
	delay := float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1))

	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter > 0 {
		jitter := delay * p.Jitter
		delay = delay + (rand.Float64()*2-1)*jitter
	}

	return time.Duration(delay)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the policy is
// exhausted or ctx is done. attempt starts at 0.
func Do(ctx context.Context, p *Policy, fn func(attempt int) error) error {
	if p == nil {
		p = DefaultPolicy()
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Backoff(attempt)
			if p.Notify != nil {
				p.Notify(attempt, delay, lastErr)
			}
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return fmt.Errorf("timeout after %d attempts: %w", attempt, ctx.Err())
				}
			} else if err := ctx.Err(); err != nil {
				return fmt.Errorf("timeout after %d attempts: %w", attempt, err)
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}

	return fmt.Errorf("failed after %d attempts: %w", p.Attempts(), lastErr)
}
