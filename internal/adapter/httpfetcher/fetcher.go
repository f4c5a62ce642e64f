// Package httpfetcher retrieves platform pages over plain HTTP with bounded
// retry and linear backoff.
package httpfetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/pkg/metrics"
	"go.uber.org/zap"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	defaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// Config is the fixed configuration of a Fetcher. Per-request values in
// entity.FetchRequest take precedence when set.
type Config struct {
	Timeout      time.Duration
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxBodyBytes int64
	UserAgent    string
	Proxies      []string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay < 0 {
		c.BaseDelay = 0
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 5 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

// Fetcher is safe for concurrent use; its configuration is never mutated
// after construction.
type Fetcher struct {
	cfg     Config
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds a Fetcher. m and logger may be nil.
func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) (*Fetcher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := newProxyPool(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		Proxy:                 pool.Proxy,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Fetcher{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		},
		metrics: m,
		logger:  logger,
	}, nil
}

// Fetch retrieves req.URL. Transport failures, timeouts and 5xx responses are
// retried up to the attempt limit with a delay of attempt×BaseDelay between
// tries. 4xx responses are returned as results. ctx bounds the whole loop,
// including backoff waits.
func (f *Fetcher) Fetch(ctx context.Context, req entity.FetchRequest) (*entity.FetchResult, error) {
	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, &NetworkError{URL: req.URL, Err: fmt.Errorf("unsupported url %q", req.URL)}
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = f.cfg.MaxAttempts
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.cfg.Timeout
	}
	header := f.headers(req, target)

	start := time.Now()
	defer func() { f.metrics.ObserveFetch(target.Hostname(), time.Since(start).Seconds()) }()

	var (
		state   = stateIdle
		attempt int
		result  *entity.FetchResult
		lastErr error
	)
	for {
		f.logger.Debug("fetch state",
			zap.String("url", req.URL),
			zap.Stringer("state", state),
			zap.Int("attempt", attempt))
		switch state {
		case stateIdle:
			state = stateAttempting

		case stateAttempting:
			attempt++
			result, lastErr = f.attempt(ctx, target.String(), header, timeout)
			switch {
			case lastErr == nil:
				state = stateSucceeded
			case ctx.Err() != nil || attempt >= maxAttempts:
				state = stateFailed
			default:
				f.logger.Warn("fetch attempt failed, retrying",
					zap.String("url", req.URL),
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", maxAttempts),
					zap.Error(lastErr))
				state = stateBackoff
			}

		case stateBackoff:
			if err := sleep(ctx, Backoff(attempt, f.cfg.BaseDelay)); err != nil {
				lastErr = err
				state = stateFailed
				continue
			}
			state = stateAttempting

		case stateSucceeded:
			result.Elapsed = time.Since(start)
			result.Attempts = attempt
			return result, nil

		case stateFailed:
			if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(lastErr, ctxErr) {
				lastErr = fmt.Errorf("%w (last attempt: %v)", ctxErr, lastErr)
			}
			f.logger.Error("fetch failed",
				zap.String("url", req.URL),
				zap.Int("attempts", attempt),
				zap.Error(lastErr))
			return nil, wrapFailure(req.URL, attempt, lastErr)
		}
	}
}

func (f *Fetcher) attempt(ctx context.Context, target string, header http.Header, timeout time.Duration) (*entity.FetchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header = header.Clone()

	resp, err := f.client.Do(httpReq)
	if err != nil {
		f.recordAttempt(err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		err := &serverError{StatusCode: resp.StatusCode}
		f.recordAttempt(err)
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		err = fmt.Errorf("read body: %w", err)
		f.recordAttempt(err)
		return nil, err
	}

	if resp.StatusCode >= 400 {
		f.metrics.IncFetchAttempt("client_error")
	} else {
		f.metrics.IncFetchAttempt("ok")
	}
	return &entity.FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (f *Fetcher) recordAttempt(err error) {
	var se *serverError
	switch {
	case errors.As(err, &se):
		f.metrics.IncFetchAttempt("server_error")
	case isTimeout(err):
		f.metrics.IncFetchAttempt("timeout")
	default:
		f.metrics.IncFetchAttempt("transport")
	}
}

// headers merges the request's overrides and credential over the defaults.
func (f *Fetcher) headers(req entity.FetchRequest, target *url.URL) http.Header {
	h := http.Header{}
	h.Set("User-Agent", f.cfg.UserAgent)
	h.Set("Accept", defaultAccept)
	h.Set("Accept-Language", defaultAcceptLanguage)
	h.Set("Cache-Control", "no-cache")
	h.Set("Referer", refererFor(target))

	o := req.Headers
	if o.UserAgent != "" {
		h.Set("User-Agent", o.UserAgent)
	}
	if o.Accept != "" {
		h.Set("Accept", o.Accept)
	}
	if o.AcceptLanguage != "" {
		h.Set("Accept-Language", o.AcceptLanguage)
	}
	if o.Referer != "" {
		h.Set("Referer", o.Referer)
	}
	if req.Credential != "" {
		h.Set("Cookie", req.Credential)
	}
	return h
}

func refererFor(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}
