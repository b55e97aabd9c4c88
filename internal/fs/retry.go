package fs

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy controls how remote sources retry transient failures.
type RetryPolicy struct {
	MaxAttempts int           // Maximum number of attempts (at least 1)
	InitialWait time.Duration // Wait before the second attempt
	MaxWait     time.Duration // Upper bound for a single wait
	Multiplier  float64       // Backoff multiplier
	Jitter      float64       // Jitter factor (0-1)
}

// DefaultRetryPolicy returns the policy used when none is given.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

type transientError struct {
	err error
}

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// transient marks err as worth another attempt.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

func isTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

func fetchWithRetry(ctx context.Context, p RetryPolicy, fn func() ([]byte, error)) ([]byte, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := fn()
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == attempts {
			break
		}

		wait := float64(p.InitialWait) * math.Pow(p.Multiplier, float64(attempt-1))
		if wait > float64(p.MaxWait) {
			wait = float64(p.MaxWait)
		}
		if p.Jitter > 0 {
			wait += wait * p.Jitter * (rand.Float64()*2 - 1)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(wait)):
		}
	}

	var te transientError
	if errors.As(lastErr, &te) {
		return nil, te.err
	}
	return nil, lastErr
}
