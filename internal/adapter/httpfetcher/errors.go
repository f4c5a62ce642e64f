package httpfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/user/engagement-scraper/internal/entity"
)

// NetworkError reports a retrieval that failed on transport errors or 5xx
// responses after every attempt was used.
type NetworkError struct {
	URL        string
	Attempts   int
	StatusCode int // last 5xx status, 0 for transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == entity.ErrFetchFailed }

// TimeoutError reports a retrieval whose last attempt, or the caller's
// deadline, timed out.
type TimeoutError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch %s timed out after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == entity.ErrFetchFailed }

// serverError marks a 5xx response so it is retried.
type serverError struct {
	StatusCode int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func wrapFailure(url string, attempts int, err error) error {
	if isTimeout(err) {
		return &TimeoutError{URL: url, Attempts: attempts, Err: err}
	}
	ne := &NetworkError{URL: url, Attempts: attempts, Err: err}
	var se *serverError
	if errors.As(err, &se) {
		ne.StatusCode = se.StatusCode
	}
	return ne
}
