package suffix_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/suffix"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestResolve_EmbeddedList(t *testing.T) {
	t.Parallel()

	svc, err := suffix.NewService(suffix.Embedded, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.Prefetch()

	tests := []struct {
		domain string
		custom []string
		want   string
	}{
		{"login.example.co.uk", nil, "example.co.uk"},
		{"login.example.co.uk", []string{"login.example.co.uk"}, "login.example.co.uk"},
		{"a.b.example.co.uk", []string{"example.co.uk"}, "b.example.co.uk"},
		{"a.b.example.co.uk", []string{"co.uk"}, "example.co.uk"},
		{"WWW.Example.COM.", nil, "example.com"},
		{"accounts.google.com", []string{"other.org", "", "  google.com "}, "accounts.google.com"},
		{"example.com", nil, "example.com"},
		{"co.uk", nil, "co.uk"},
		{"localhost", nil, "localhost"},
		{"bücher.example.de", nil, "example.de"},
		{"192.168.1.10", nil, "192.168.1.10"},
		{"[::1]", nil, "[::1]"},
		{"not a domain", nil, "not a domain"},
		{"bad_label.example.com", nil, "bad_label.example.com"},
		{"", nil, ""},
	}
	for _, tt := range tests {
		got, err := svc.Resolve(context.Background(), tt.domain, tt.custom)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.domain, err)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %v) = %q, want %q", tt.domain, tt.custom, got, tt.want)
		}
	}
}

func TestPlusOne_FakeList(t *testing.T) {
	t.Parallel()

	list := testutil.SuffixList{"com", "github.io"}
	if got := suffix.PlusOne(list, "alice.github.io", nil); got != "alice.github.io" {
		t.Errorf("got %q", got)
	}
	if got := suffix.PlusOne(list, "docs.alice.github.io", nil); got != "alice.github.io" {
		t.Errorf("got %q", got)
	}
	if got := suffix.PlusOne(list, "a.b.example.com", nil); got != "example.com" {
		t.Errorf("got %q", got)
	}
}

func TestSuffixPlusUpToOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		domain   string
		suffixes []string
		want     string
		found    bool
	}{
		{"a.b.c.example", []string{"c.example"}, "b.c.example", true},
		{"c.example", []string{"c.example"}, "c.example", true},
		{"a.b.c.example", []string{"example", "b.c.example"}, "a.b.c.example", true},
		{"xc.example", []string{"c.example"}, "", false},
		{"a.example", nil, "", false},
	}
	for _, tt := range tests {
		got, found := suffix.SuffixPlusUpToOne(tt.domain, tt.suffixes)
		if got != tt.want || found != tt.found {
			t.Errorf("SuffixPlusUpToOne(%q, %v) = (%q, %v), want (%q, %v)",
				tt.domain, tt.suffixes, got, found, tt.want, tt.found)
		}
	}
}

func TestService_LoadsOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc, err := suffix.NewService(func() (suffix.List, error) {
		calls.Add(1)
		return testutil.SuffixList{"com"}, nil
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.Prefetch()
	svc.Prefetch()
	for i := 0; i < 5; i++ {
		if _, err := svc.Resolve(context.Background(), "x.example.com", nil); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if !svc.Ready() {
		t.Errorf("expected service to be ready")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestService_ResolveHonoursContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	svc, err := suffix.NewService(func() (suffix.List, error) {
		<-release
		return testutil.SuffixList{"com"}, nil
	}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := svc.Resolve(ctx, "example.com", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if svc.Ready() {
		t.Fatalf("service must not be ready while the loader blocks")
	}

	close(release)
	got, err := svc.Resolve(context.Background(), "www.example.com", nil)
	if err != nil {
		t.Fatalf("Resolve after release: %v", err)
	}
	if got != "example.com" {
		t.Errorf("got %q, want example.com", got)
	}
}

func TestService_LoadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	svc, err := suffix.NewService(func() (suffix.List, error) { return nil, boom }, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "example.com", nil); !errors.Is(err, boom) {
		t.Errorf("expected load error, got %v", err)
	}
}

func TestNewService_NilLoader(t *testing.T) {
	t.Parallel()
	if _, err := suffix.NewService(nil, nil); !errors.Is(err, suffix.ErrNilLoader) {
		t.Errorf("expected ErrNilLoader, got %v", err)
	}
}
