package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/zhukata/shopbot/core/telegram/netutil"
)

// Telegram long-poll requests are held open server-side for the poll
// timeout, so the client timeout has to stay comfortably above it.
const (
	httpClientTimeout   = 30 * time.Second
	httpDialTimeout     = 5 * time.Second
	httpResponseTimeout = 5 * time.Second

	retryAttempts = 3
	retryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns the client the bot talks to api.telegram.org
// with: pooled connections and transparent retries on transient dial and
// timeout errors.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: httpClientTimeout,
		Transport: &retryingTransport{
			next: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: httpDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: httpResponseTimeout,
				ExpectContinueTimeout: time.Second,
			},
			attempts: retryAttempts,
			backoff:  retryBackoff,
		},
	}
}

// retryingTransport re-sends requests that failed with a retryable
// network error, with linear backoff between attempts. Requests whose
// body cannot be replayed are never retried.
type retryingTransport struct {
	next     http.RoundTripper
	attempts int
	backoff  time.Duration
}

func (t *retryingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	var lastErr error
	for attempt := 0; attempt <= t.attempts; attempt++ {
		attemptReq := req
		if attempt > 0 {
			var err error
			if attemptReq, err = replayRequest(req); err != nil {
				return nil, err
			}
			if attemptReq == nil {
				return nil, lastErr
			}
			if err := t.wait(req, time.Duration(attempt)*t.backoff); err != nil {
				return nil, err
			}
		}

		resp, err := next.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) {
			break
		}
	}
	return nil, lastErr
}

// replayRequest clones req for a retry. Returns nil when the body is not
// replayable.
func replayRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	switch {
	case req.GetBody != nil:
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	case req.Body != nil:
		return nil, nil
	}
	return clone, nil
}

func (t *retryingTransport) wait(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
