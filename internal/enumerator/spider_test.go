package enumerator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/enumerator"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/suffix"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
)

const (
	root   = "https://www.example.com/"
	login  = "https://www.example.com/login"
	about  = "https://www.example.com/about"
	reset  = "https://www.example.com/login/reset"
	signin = "https://accounts.example.com/signin"
)

func site() *testutil.DummyWebClient {
	return &testutil.DummyWebClient{Pages: map[string]string{
		root: `<a href="/login">Sign in</a>
<a href="/about#team">About</a>
<a href="HTTPS://WWW.EXAMPLE.COM:443/login">Again</a>
<a href="` + signin + `">Accounts</a>
<a href="https://other.example.net/">Elsewhere</a>
<a href="mailto:help@example.com">Mail</a>`,
		login:  `<a href="/login/reset">Forgot password</a><a href="/">Home</a>`,
		about:  `<p>About us</p>`,
		signin: `<iframe src="/embed"></iframe>`,
		reset:  `<p>Reset</p>`,
	}}
}

func newSpider(t *testing.T, depth int, withSites bool) *enumerator.Spider {
	t.Helper()
	logger := &testutil.DummyLogger{}
	var sites enumerator.SiteResolver
	if withSites {
		svc, err := suffix.NewService(suffix.Embedded, logger)
		if err != nil {
			t.Fatalf("NewService: %v", err)
		}
		sites = svc
	}
	s, err := enumerator.NewSpider(depth, site(), sites, logger)
	if err != nil {
		t.Fatalf("NewSpider: %v", err)
	}
	return s
}

func TestSpider_Depths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		depth     int
		withSites bool
		want      []string
	}{
		{"depth 0 is the target", 0, true, []string{root}},
		{"depth 1 same host", 1, false, []string{root, login, about}},
		{"depth 1 same site", 1, true, []string{root, login, about, signin}},
		{"depth 2 same site", 2, true, []string{root, login, about, signin, reset, "https://accounts.example.com/embed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := newSpider(t, tt.depth, tt.withSites).Enumerate(context.Background(), "https://www.example.com#top")
			if err != nil {
				t.Fatalf("Enumerate: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pages (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpider_MaxPages(t *testing.T) {
	t.Parallel()
	s := newSpider(t, 3, true)
	s.MaxPages = 2

	got, err := s.Enumerate(context.Background(), root)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if diff := cmp.Diff([]string{root, login}, got); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestSpider_UnreachableTarget(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	s, err := enumerator.NewSpider(2, &testutil.DummyWebClient{}, nil, logger)
	if err != nil {
		t.Fatalf("NewSpider: %v", err)
	}

	got, err := s.Enumerate(context.Background(), "https://gone.example/")
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("pages = %v", got)
	}
	if logger.WarnCount() != 1 {
		t.Errorf("warnings = %d, want 1", logger.WarnCount())
	}
}

func TestSpider_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSpider(t, 2, false).Enumerate(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewSpider_NilWebClient(t *testing.T) {
	t.Parallel()
	if _, err := enumerator.NewSpider(1, nil, nil, nil); !errors.Is(err, enumerator.ErrNilWebClient) {
		t.Errorf("err = %v", err)
	}
}
