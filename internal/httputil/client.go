// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-gated HTTP client shared by all
// source clients. Every outbound request waits on a common limiter, so
// the pipeline observes one mandatory delay between network calls no
// matter which source issues them.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 3

// Client wraps an http.Client with a blocking rate gate and a
// User-Agent header applied to every request.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int

	limiter *rate.Limiter
}

// NewClient builds a Client whose limiter allows one request per
// requestDelay. A zero delay disables the gate.
func NewClient(hc *http.Client, userAgent string, requestDelay time.Duration) *Client {
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Client{
		HTTP:      hc,
		UserAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Do waits on the rate gate, then executes the request, retrying on
// HTTP 429 with exponential backoff (RetryBaseDelay, doubled per
// attempt). The wait is a blocking sleep; cancelling ctx during a wait
// returns ctx.Err(). After exhausting retries the last 429 response is
// returned so the caller can inspect it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.HTTP.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
