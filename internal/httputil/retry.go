// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Backoff bounds. Tests override the base delays to avoid real sleeps.
var (
	// RateLimitBaseDelay is the first wait after an HTTP 429. It doubles on
	// each further 429 up to RateLimitMaxDelay.
	RateLimitBaseDelay = 5 * time.Second
	RateLimitMaxDelay  = 60 * time.Second

	// ServerErrorBaseDelay grows linearly with each 5xx response up to
	// ServerErrorMaxDelay.
	ServerErrorBaseDelay = 2 * time.Second
	ServerErrorMaxDelay  = 20 * time.Second
)

// DefaultMaxRetries is used when DoWithRetry is called with maxRetries <= 0.
const DefaultMaxRetries = 8

// Backoff returns the wait before retrying a response with the given status
// code. attempt counts from zero. Statuses that are not retried return 0.
//
//	429: 5s, 10s, 20s, 40s, 60s, 60s, ...
//	5xx: 2s, 4s, 6s, ... 20s
func Backoff(status, attempt int) time.Duration {
	switch {
	case status == http.StatusTooManyRequests:
		d := RateLimitBaseDelay
		for i := 0; i < attempt && d < RateLimitMaxDelay; i++ {
			d *= 2
		}
		return min(d, RateLimitMaxDelay)
	case status >= 500 && status < 600:
		return min(time.Duration(attempt+1)*ServerErrorBaseDelay, ServerErrorMaxDelay)
	}
	return 0
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and 5xx responses, waiting Backoff between attempts.
//
// When maxRetries is 0 the default (8) is used. On each retried response the
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last response is returned so the caller can inspect it.
// A nil logger disables retry logging.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, log *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if log == nil {
		log = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		wait := Backoff(resp.StatusCode, attempt)
		if wait == 0 || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		log.Warn("retrying request",
			zap.Int("status", resp.StatusCode),
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
