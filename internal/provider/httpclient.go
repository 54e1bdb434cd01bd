package provider

import (
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"
)

const (
	// Default retry configuration
	defaultRetryCount       = 3
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
	defaultTimeout          = 10 * time.Second
)

// HTTPClientConfig tunes the upstream HTTP client. Zero values fall back to defaults,
// except RetryCount where a negative value disables retries.
type HTTPClientConfig struct {
	BaseURL          string
	UserAgent        string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
}

// NewHTTPClient creates a new HTTP client with retry logic and exponential backoff
func NewHTTPClient(cfg HTTPClientConfig) *resty.Client {
	retryCount := cfg.RetryCount
	switch {
	case retryCount < 0:
		retryCount = 0
	case retryCount == 0:
		retryCount = defaultRetryCount
	}
	wait := cfg.RetryWaitTime
	if wait <= 0 {
		wait = defaultRetryWaitTime
	}
	maxWait := cfg.RetryMaxWaitTime
	if maxWait <= 0 {
		maxWait = defaultRetryMaxWaitTime
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(retryCount).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(maxWait).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook)

	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return client
}

// retryCondition determines whether a request should be retried based on the response and error
func retryCondition(r *resty.Response, err error) bool {
	// Retry on network errors
	if err != nil {
		return true
	}

	switch code := r.StatusCode(); {
	case code >= 500:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	default:
		// Don't retry on other client errors
		return false
	}
}

// retryHook logs retry attempts for observability
func retryHook(r *resty.Response, err error) {
	if err != nil {
		slog.Debug("retrying upstream request due to error",
			"url", r.Request.URL,
			"attempt", r.Request.Attempt,
			"error", err.Error())
		return
	}

	slog.Debug("retrying upstream request due to status code",
		"url", r.Request.URL,
		"attempt", r.Request.Attempt,
		"status_code", r.StatusCode())
}
