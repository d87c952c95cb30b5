// Package webclient fetches pages for inspection, either as served (nethttp)
// or as rendered by a headless browser (chromedp).
package webclient

import (
	"context"
	"fmt"
)

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// Get fetches url and fails on non-2xx responses.
func Get(ctx context.Context, wc WebClient, url string) (*Response, error) {
	resp, err := wc.Do(ctx, &Request{Method: "GET", URL: url})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp, nil
}
