// Package fetcher fetches pages and matches the forms on them.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/htmlform"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

var (
	ErrNilWebClient = errors.New("fetcher: webclient is nil")
	ErrNilParser    = errors.New("fetcher: parser is nil")
)

// Parser is satisfied by *formparser.Parser.
type Parser interface {
	Parse(ctx context.Context, req formparser.Request) (*formparser.Result, error)
}

// Page is the outcome for one URL. Result is nil when the page has nothing
// to fill; Err is set when the page could not be fetched or parsed.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Result     *formparser.Result
	Err        error
}

type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	parser Parser
	logger logging.Logger
}

func New(cfg Config, wc webclient.WebClient, parser Parser, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, ErrNilWebClient
	}
	if parser == nil {
		return nil, ErrNilParser
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		parser: parser,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch fetches and matches every URL with at most MaxConcurrency pages in
// flight. Results keep the order of pageURLs. Per-page failures are reported
// in Page.Err; the returned error is only the context's.
func (f *Fetcher) Fetch(ctx context.Context, pageURLs []string) ([]Page, error) {
	pages := make([]Page, len(pageURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.MaxConcurrency)
	for i, pageURL := range pageURLs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			pages[i] = f.fetchOne(gctx, pageURL)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return pages, err
	}
	return pages, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, pageURL string) Page {
	page := Page{URL: pageURL}

	resp, err := f.HTTPGet(ctx, pageURL)
	if resp != nil {
		page.StatusCode = resp.StatusCode
		page.FinalURL = resp.FinalURL
	}
	if err != nil {
		f.logger.Warn("error while fetching page",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		page.Err = err
		return page
	}
	base := resp.FinalURL
	if base == "" {
		base = pageURL
	}

	opts := htmlform.Options{MaxFrameDepth: f.cfg.MaxFrameDepth, Logger: f.logger}
	if f.cfg.FollowFrames {
		opts.LoadFrame = f.loadFrame
	}
	root, err := htmlform.BuildTree(ctx, base, resp.Body, opts)
	if err != nil {
		page.Err = fmt.Errorf("build tree: %w", err)
		return page
	}

	res, err := f.parser.Parse(ctx, formparser.Request{
		Package:        f.cfg.Package,
		Windows:        []*model.ViewNode{root},
		Manual:         f.cfg.Manual,
		CustomSuffixes: f.cfg.CustomSuffixes,
	})
	if err != nil {
		page.Err = fmt.Errorf("match: %w", err)
		return page
	}
	page.Result = res
	f.logger.Debug("page matched",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "matched", Value: res != nil})
	return page
}

func (f *Fetcher) loadFrame(ctx context.Context, frameURL string) ([]byte, error) {
	resp, err := f.HTTPGet(ctx, frameURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// HTTPGet fetches page and fails on non-2xx statuses.
func (f *Fetcher) HTTPGet(ctx context.Context, page string) (*webclient.Response, error) {
	resp, err := webclient.Get(ctx, f.wc, page)
	if err != nil {
		return resp, fmt.Errorf("error GETting %s: %w", page, err)
	}
	return resp, nil
}
