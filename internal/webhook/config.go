package webhook

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds webhook delivery settings. Immutable after construction.
type Config struct {
	// URL is the endpoint events are POSTed to.
	URL string
	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryBackoff is the initial delay between attempts, doubled per retry.
	RetryBackoff time.Duration
}

// DefaultConfig returns the config defaults without a URL.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// ConfigFromEnv reads webhook settings from the environment. Returns nil
// when WEBHOOK_URL is unset or blank, which disables delivery entirely.
//
// Recognized variables:
//
//	WEBHOOK_URL               endpoint (required)
//	WEBHOOK_TIMEOUT_SECS      per-attempt timeout, default 10
//	WEBHOOK_MAX_RETRIES       retries after the first attempt, default 3
//	WEBHOOK_RETRY_BACKOFF_MS  initial backoff, default 500
func ConfigFromEnv() *Config {
	url := os.Getenv("WEBHOOK_URL")
	if strings.TrimSpace(url) == "" {
		return nil
	}

	cfg := DefaultConfig()
	cfg.URL = url

	if v, err := strconv.Atoi(os.Getenv("WEBHOOK_TIMEOUT_SECS")); err == nil && v > 0 {
		cfg.Timeout = time.Duration(v) * time.Second
	}
	if v, err := strconv.Atoi(os.Getenv("WEBHOOK_MAX_RETRIES")); err == nil && v >= 0 {
		cfg.MaxRetries = v
	}
	if v, err := strconv.Atoi(os.Getenv("WEBHOOK_RETRY_BACKOFF_MS")); err == nil && v > 0 {
		cfg.RetryBackoff = time.Duration(v) * time.Millisecond
	}
	return &cfg
}
