package enumerator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

const defaultMaxPages = 50

var ErrNilWebClient = errors.New("enumerator: webclient is nil")

// SiteResolver maps a host to the site it belongs to. *suffix.Service
// satisfies it.
type SiteResolver interface {
	Resolve(ctx context.Context, domain string, customSuffixes []string) (string, error)
}

// Spider walks links breadth first. Pages at most MaxDepth hops from the
// target are returned; only pages of the target's site are followed.
type Spider struct {
	MaxDepth int
	// MaxPages caps the result. Zero means 50.
	MaxPages int
	// CustomSuffixes are passed to the SiteResolver.
	CustomSuffixes []string

	wc     webclient.WebClient
	sites  SiteResolver
	logger logging.Logger
}

// NewSpider returns a spider. Without a SiteResolver pages must share the
// target's host name.
func NewSpider(maxDepth int, wc webclient.WebClient, sites SiteResolver, logger logging.Logger) (*Spider, error) {
	if wc == nil {
		return nil, ErrNilWebClient
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Spider{
		MaxDepth: maxDepth,
		wc:       wc,
		sites:    sites,
		logger:   logger.With(logging.Field{Key: "component", Value: "spider"}),
	}, nil
}

type spiderHelper struct {
	spider  *Spider
	ctx     context.Context
	site    string
	depth   map[string]int
	results []string
	limit   int
}

// Enumerate returns target followed by the pages discovered from it in
// breadth first order.
func (s *Spider) Enumerate(ctx context.Context, target string) ([]string, error) {
	root, err := normalize(target)
	if err != nil {
		return nil, err
	}
	sh := &spiderHelper{
		spider:  s,
		ctx:     ctx,
		depth:   map[string]int{root.String(): 0},
		results: []string{root.String()},
		limit:   s.MaxPages,
	}
	if sh.limit <= 0 {
		sh.limit = defaultMaxPages
	}
	if sh.site, err = s.siteOf(ctx, root); err != nil {
		return nil, err
	}

	for i := 0; i < len(sh.results); i++ {
		if err := ctx.Err(); err != nil {
			return sh.results, err
		}
		page := sh.results[i]
		if sh.depth[page] >= s.MaxDepth {
			break
		}
		links, err := sh.crawlPage(page)
		if err != nil {
			s.logger.Warn("error while crawling page",
				logging.Field{Key: "url", Value: page},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		if sh.appendPages(links, sh.depth[page]) {
			break
		}
	}
	return sh.results, nil
}

func (s *Spider) siteOf(ctx context.Context, u *url.URL) (string, error) {
	host := u.Hostname()
	if s.sites == nil {
		return host, nil
	}
	site, err := s.sites.Resolve(ctx, host, s.CustomSuffixes)
	if err != nil {
		return "", fmt.Errorf("resolve site of %s: %w", host, err)
	}
	return site, nil
}

func (sh *spiderHelper) crawlPage(target string) ([]string, error) {
	resp, err := webclient.Get(sh.ctx, sh.spider.wc, target)
	if err != nil {
		return nil, err
	}
	if ct := resp.Headers.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, nil
		}
	}

	doc, err := html.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", target, err)
	}
	base := resp.FinalURL
	if base == "" {
		base = target
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	var links []string
	extractLinks(doc, baseURL, &links)
	return links, nil
}

// linkAttrs are the attributes that lead to another document.
var linkAttrs = map[string]string{
	"a":      "href",
	"area":   "href",
	"iframe": "src",
}

func extractLinks(n *html.Node, base *url.URL, links *[]string) {
	if n.Type == html.ElementNode {
		if n.Data == "base" {
			if href := attr(n, "href"); href != "" {
				if b, err := base.Parse(href); err == nil {
					*base = *b
				}
			}
		}
		if key, ok := linkAttrs[n.Data]; ok {
			if v := strings.TrimSpace(attr(n, key)); v != "" {
				if ref, err := base.Parse(v); err == nil {
					*links = append(*links, ref.String())
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractLinks(c, base, links)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// appendPages records unseen same-site links one hop deeper than lastDepth.
// It reports whether the page limit was reached.
func (sh *spiderHelper) appendPages(pages []string, lastDepth int) bool {
	for _, page := range pages {
		u, err := normalize(page)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			continue
		}
		pageStr := u.String()
		if _, seen := sh.depth[pageStr]; seen {
			continue
		}
		site, err := sh.spider.siteOf(sh.ctx, u)
		if err != nil || site != sh.site {
			continue
		}
		sh.depth[pageStr] = lastDepth + 1
		sh.results = append(sh.results, pageStr)
		if len(sh.results) >= sh.limit {
			return true
		}
	}
	return false
}

// normalize drops the fragment, lower-cases scheme and host, and removes
// default ports so the same page is only visited once.
func normalize(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse url %s: %w", raw, err)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndexByte(u.Host, ':')]
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}
