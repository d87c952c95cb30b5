// Package origin tracks the web origins present in a UI tree, turns them into
// form origins and enforces that a scenario never spans two origins.
package origin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/scenario"
)

// Resolver canonicalizes a host to its registrable domain.
// *suffix.Service implements it.
type Resolver interface {
	Resolve(ctx context.Context, domain string, customSuffixes []string) (string, error)
}

var ErrNilResolver = errors.New("origin: nil resolver")

// Track returns the distinct web origins declared in roots, in pre-order
// encounter order.
func Track(roots []*model.ViewNode) []string {
	var t Tracker
	for _, r := range roots {
		t.visit(r)
	}
	return t.origins
}

// Tracker accumulates distinct origins across several trees.
type Tracker struct {
	origins []string
	seen    map[string]struct{}
}

// Add records the origins of every node under root.
func (t *Tracker) Add(root *model.ViewNode) { t.visit(root) }

// Origins returns the origins recorded so far.
func (t *Tracker) Origins() []string { return append([]string(nil), t.origins...) }

func (t *Tracker) visit(n *model.ViewNode) {
	if n == nil {
		return
	}
	if o := n.WebOrigin(); o != "" {
		if t.seen == nil {
			t.seen = map[string]struct{}{}
		}
		if _, ok := t.seen[o]; !ok {
			t.seen[o] = struct{}{}
			t.origins = append(t.origins, o)
		}
	}
	for _, c := range n.Children {
		t.visit(c)
	}
}

// ToFormOrigin converts a web origin such as "https://login.example.co.uk"
// into a web FormOrigin keyed by its canonical domain. Origins that are not
// http(s) or lack a host yield nil.
func ToFormOrigin(ctx context.Context, r Resolver, webOrigin string, customSuffixes []string) (model.FormOrigin, error) {
	if r == nil {
		return nil, ErrNilResolver
	}
	u, err := url.Parse(strings.TrimSpace(webOrigin))
	if err != nil {
		return nil, nil
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, nil
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, nil
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	domain, err := r.Resolve(ctx, host, customSuffixes)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %q: %w", host, err)
	}
	return model.WebOrigin{ID: domain}, nil
}

// PassesCheck reports whether s may be used. In single-origin mode no field
// may carry a web origin, since only the URL bar is trusted there. Otherwise
// all fields must share one origin, where "" stands for the app itself.
func PassesCheck(s scenario.Scenario[*model.FormField], singleOriginMode bool) bool {
	if s == nil {
		return false
	}
	fields := s.AllFields()
	if singleOriginMode {
		for _, f := range fields {
			if f.WebOrigin() != "" {
				return false
			}
		}
		return true
	}
	distinct := map[string]struct{}{}
	for _, f := range fields {
		distinct[f.WebOrigin()] = struct{}{}
	}
	return len(distinct) == 1
}

// Input gathers what Determine needs.
type Input struct {
	Package string
	// TrustedBrowser is true when the requesting app passed the trust lookup.
	TrustedBrowser   bool
	SingleOriginMode bool
	// Tracked are the origins collected by Track, first one being the URL bar.
	Tracked        []string
	Scenario       scenario.Scenario[*model.FormField]
	CustomSuffixes []string
}

// Determine picks the origin credentials are looked up for. A nil origin
// means the request must not be served. In single-origin mode the page must
// declare exactly one origin, the URL bar's; anything else is ambiguous.
func Determine(ctx context.Context, r Resolver, in Input) (model.FormOrigin, error) {
	app := model.AppOrigin{ID: in.Package}
	if !in.TrustedBrowser || len(in.Tracked) == 0 {
		return app, nil
	}

	var web string
	if in.SingleOriginMode {
		if len(in.Tracked) != 1 {
			return nil, nil
		}
		web = in.Tracked[0]
	} else if in.Scenario != nil {
		if fields := in.Scenario.AllFields(); len(fields) > 0 {
			web = fields[0].WebOrigin()
		}
	}
	if web == "" {
		return app, nil
	}
	return ToFormOrigin(ctx, r, web, in.CustomSuffixes)
}
