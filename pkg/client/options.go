package client

import (
	"net/http"
	"strings"
	"time"
)

// Option configures a Client at construction.
type Option func(*Client)

// RetryPolicy bounds how GET calls (history listing, run lookup, report
// download) are retried on transport errors and 5xx replies.  Review
// submissions are sent once regardless of the policy; each one costs a model
// call on the server.
//
// Zero fields keep the current value.  Use WithoutRetries to disable retries.
type RetryPolicy struct {
	Max     int
	MinWait time.Duration
	MaxWait time.Duration
}

// WithRetryPolicy overrides the default of three retries backing off from
// 500ms to 5s.  A MaxWait below the resulting MinWait is raised to it.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.Max > 0 {
			c.retryMax = p.Max
		}
		if p.MinWait > 0 {
			c.retryWaitMin = p.MinWait
		}
		if p.MaxWait > 0 {
			c.retryWaitMax = p.MaxWait
		}
		if c.retryWaitMax < c.retryWaitMin {
			c.retryWaitMax = c.retryWaitMin
		}
	}
}

// WithoutRetries makes every call a single attempt.  A 429 is then returned
// to the caller instead of being waited out.
func WithoutRetries() Option {
	return func(c *Client) {
		c.retryMax = 0
	}
}

// WithTimeout bounds each HTTP attempt.  A review holds the connection open
// while the server runs the checks, so keep it above the server's LLM
// timeout.  Zero means no limit; negative values are ignored.  It applies to
// the client given by WithHTTPClient too, on a copy.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.timeout = &d
		}
	}
}

// WithHTTPClient replaces the transport, e.g. for a proxy or custom TLS.
// Nil is ignored.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger receives request and retry traces.  Nil is ignored.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIKey sends key as a bearer token.  The server itself does not check
// it; gateways in front of it may.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithUserAgent prepends a product token such as "ci-bot/1.0" to the SDK's
// own, so server logs show both.
func WithUserAgent(product string) Option {
	return func(c *Client) {
		if product = strings.TrimSpace(product); product != "" {
			c.userAgent = product + " " + c.userAgent
		}
	}
}

//Personal.AI order the ending
