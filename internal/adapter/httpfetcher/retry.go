package httpfetcher

import (
	"context"
	"time"
)

type retryState int

const (
	stateIdle retryState = iota
	stateAttempting
	stateBackoff
	stateSucceeded
	stateFailed
)

func (s retryState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAttempting:
		return "attempting"
	case stateBackoff:
		return "backoff"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backoff is the delay after the given (1-based) failed attempt.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * base
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
