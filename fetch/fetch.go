// Package fetch obtains raw page markup for the analysis pipeline.
package fetch

import (
	"context"
	"time"

	"product-intel/scraper"
	"product-intel/utils"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Fetcher returns the markup found at a URL. Failures are reported as
// *scraper.UpstreamError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configures both fetchers.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	UserAgent  string
	Logger     *utils.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if o.Logger == nil {
		o.Logger = utils.NewLogger()
	}
	return o
}

func (o Options) retry(name string) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: o.MaxRetries,
		BaseDelay:   o.RetryDelay,
		Logger:      o.Logger.Named(name),
	}
}

func upstream(url string, err error) error {
	return &scraper.UpstreamError{URL: url, Err: err}
}
