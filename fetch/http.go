package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
)

var errEmptyBody = errors.New("empty response body")

// HTTPFetcher downloads pages with a colly collector, rotating the user
// agent on every request.
type HTTPFetcher struct {
	base *colly.Collector
	opts Options
}

// NewHTTPFetcher creates an HTTPFetcher. Zero options fall back to defaults.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(opts.Timeout)

	return &HTTPFetcher{base: c, opts: opts}
}

// Fetch downloads url, retrying failed attempts with back-off.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := f.opts.retry("http").Do(ctx, "fetch "+url, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := f.visit(url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, upstream(url, err)
	}
	return body, nil
}

// visit runs one request on a clone of the base collector so concurrent
// fetches keep their callbacks apart.
func (f *HTTPFetcher) visit(url string) ([]byte, error) {
	c := f.base.Clone()
	extensions.RandomUserAgent(c)

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("status %d: %w", status, errEmptyBody)
	}
	return body, nil
}
