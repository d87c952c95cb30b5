package fetcher_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/fetcher"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/model"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

const (
	loginURL = "https://accounts.example.com/login"
	aboutURL = "https://www.example.com/about"
	frameURL = "https://auth.other.example/frame"
	outerURL = "https://shop.example.net/checkout"
)

const loginPage = `<form>
<input type="email" autocomplete="username">
<input type="password" autocomplete="current-password" autofocus>
</form>`

func pages() map[string]string {
	return map[string]string{
		loginURL: loginPage,
		aboutURL: `<p>About us</p>`,
		frameURL: loginPage,
		// Username on the shop, password inside a foreign frame.
		outerURL: `<input type="email" autocomplete="username" autofocus><iframe src="` + frameURL + `"></iframe>`,
	}
}

func newFetcher(t *testing.T, cfg fetcher.Config, wc webclient.WebClient) *fetcher.Fetcher {
	t.Helper()
	if cfg.Package == "" {
		cfg.Package = testutil.RendererPackage
	}
	f, err := fetcher.New(cfg, wc, testutil.NewParser(t, nil), &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	return f
}

// ─── Fetch ─────────────────────────────────────────────────────────────

func TestFetch_MatchesPagesInOrder(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: pages()}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 2}, wc)

	urls := []string{loginURL, aboutURL, "https://missing.example/"}
	got, err := f.Fetch(context.Background(), urls)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d pages", len(got))
	}
	for i, u := range urls {
		if got[i].URL != u {
			t.Errorf("page %d url = %q, want %q", i, got[i].URL, u)
		}
	}

	login := got[0]
	if login.Err != nil || login.Result == nil {
		t.Fatalf("login page: err=%v result=%v", login.Err, login.Result)
	}
	if login.Result.Origin != (model.WebOrigin{ID: "example.com"}) {
		t.Errorf("login origin = %v", login.Result.Origin)
	}

	if got[1].Err != nil || got[1].Result != nil {
		t.Errorf("about page: err=%v result=%v", got[1].Err, got[1].Result)
	}

	if got[2].Err == nil || got[2].StatusCode != 404 {
		t.Errorf("missing page: status=%d err=%v", got[2].StatusCode, got[2].Err)
	}
}

func TestFetch_FetchFailure(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: pages(), FailURLs: map[string]bool{loginURL: true}}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 1}, wc)

	got, err := f.Fetch(context.Background(), []string{loginURL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got[0].Err == nil {
		t.Fatal("expected a page error")
	}
}

func TestFetch_CrossOriginFrameIsRejected(t *testing.T) {
	t.Parallel()

	// Without frames the shop page offers only a focused username.
	wc := &testutil.DummyWebClient{Pages: pages()}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 1}, wc)
	got, _ := f.Fetch(context.Background(), []string{outerURL})
	if got[0].Err != nil || got[0].Result == nil {
		t.Fatalf("without frames: err=%v result=%v", got[0].Err, got[0].Result)
	}
	if wc.RequestCount() != 1 {
		t.Errorf("frames fetched although FollowFrames is off: %d requests", wc.RequestCount())
	}

	wc = &testutil.DummyWebClient{Pages: pages()}
	f = newFetcher(t, fetcher.Config{MaxConcurrency: 1, FollowFrames: true}, wc)
	got, _ = f.Fetch(context.Background(), []string{outerURL})
	if got[0].Err != nil {
		t.Fatalf("with frames: %v", got[0].Err)
	}
	if wc.RequestCount() != 2 {
		t.Errorf("requests = %d, want page and frame", wc.RequestCount())
	}
	if got[0].Result == nil {
		t.Fatal("expected the frame login to match on its own")
	}
	for _, f := range got[0].Result.Fields.AllFields() {
		if f.WebOrigin() != "https://auth.other.example" {
			t.Errorf("field %s from origin %q mixed into frame scenario", f.ID(), f.WebOrigin())
		}
	}
}

type countingClient struct {
	testutil.DummyWebClient
	inFlight, peak atomic.Int32
	mu             sync.Mutex
}

func (c *countingClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	c.mu.Lock()
	if n > c.peak.Load() {
		c.peak.Store(n)
	}
	c.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	return c.DummyWebClient.Do(ctx, req)
}

func TestFetch_BoundsConcurrency(t *testing.T) {
	t.Parallel()
	wc := &countingClient{DummyWebClient: testutil.DummyWebClient{Pages: pages()}}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 2}, wc)

	urls := make([]string, 8)
	for i := range urls {
		urls[i] = aboutURL
	}
	if _, err := f.Fetch(context.Background(), urls); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if p := wc.peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", p)
	}
}

func TestFetch_Canceled(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Pages: pages(), ResponseDelay: time.Second}
	f := newFetcher(t, fetcher.Config{MaxConcurrency: 1}, wc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, []string{loginURL, aboutURL}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	if _, err := fetcher.New(fetcher.Config{}, nil, testutil.NewParser(t, nil), nil); !errors.Is(err, fetcher.ErrNilWebClient) {
		t.Errorf("nil webclient: %v", err)
	}
	if _, err := fetcher.New(fetcher.Config{}, &testutil.DummyWebClient{}, nil, nil); !errors.Is(err, fetcher.ErrNilParser) {
		t.Errorf("nil parser: %v", err)
	}
}
