package entity

import (
	"errors"
	"time"
)

// ErrFetchFailed is matched by every error the fetcher returns after it has
// given up on a request.
var ErrFetchFailed = errors.New("fetch failed")

// HeaderOverrides enumerates the request headers a caller may replace.
// Empty fields keep the fetcher's defaults.
type HeaderOverrides struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
}

// FetchRequest holds the parameters of one logical page retrieval.
type FetchRequest struct {
	URL string
	// Credential is an opaque cookie string sent verbatim in the Cookie header.
	Credential  string
	Headers     HeaderOverrides
	Timeout     time.Duration
	MaxAttempts int
}

// FetchResult is the outcome of a retrieval that did not end in a 5xx or a
// transport failure. 4xx responses are returned as results too.
type FetchResult struct {
	StatusCode  int
	Body        string
	ContentType string
	Elapsed     time.Duration
	Attempts    int
}
