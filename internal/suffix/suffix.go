// Package suffix canonicalizes domains to their registrable part
// (public suffix plus one label), with user-supplied suffix overrides.
package suffix

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

// List answers public-suffix queries. publicsuffix.List satisfies it.
type List interface {
	PublicSuffix(domain string) string
}

// LoadFunc produces the list. It runs at most once per Service.
type LoadFunc func() (List, error)

// Embedded loads the list compiled into golang.org/x/net/publicsuffix.
func Embedded() (List, error) {
	return publicsuffix.List, nil
}

var ErrNilLoader = errors.New("suffix: nil loader")

// Service owns the process-wide public-suffix list. The list is loaded once,
// either ahead of time by Prefetch or on the first Resolve.
type Service struct {
	load   LoadFunc
	logger logging.Logger

	once  sync.Once
	ready chan struct{}
	list  List
	err   error
}

// NewService returns a Service that loads its list with load.
func NewService(load LoadFunc, logger logging.Logger) (*Service, error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		load:   load,
		logger: logger.With(logging.Field{Key: "component", Value: "suffix"}),
		ready:  make(chan struct{}),
	}, nil
}

// Prefetch starts loading the list in the background. Calling it more than
// once is harmless.
func (s *Service) Prefetch() {
	s.once.Do(func() {
		go s.doLoad()
	})
}

func (s *Service) doLoad() {
	defer close(s.ready)
	start := time.Now()
	s.list, s.err = s.load()
	if s.err != nil {
		s.logger.Error("public suffix list load failed", logging.Field{Key: "error", Value: s.err.Error()})
		return
	}
	s.logger.Debug("public suffix list loaded", logging.Field{Key: "duration", Value: time.Since(start).String()})
}

// Ready reports whether the list has finished loading.
func (s *Service) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Resolve returns the canonical form of domain: public suffix plus one label,
// widened to a custom suffix plus up to one label when that is longer.
// IP addresses and syntactically invalid domains are returned unchanged.
// Resolve blocks until the list is loaded or ctx is done.
func (s *Service) Resolve(ctx context.Context, domain string, customSuffixes []string) (string, error) {
	s.Prefetch()
	select {
	case <-s.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", fmt.Errorf("load public suffix list: %w", s.err)
	}
	return PlusOne(s.list, domain, customSuffixes), nil
}

// PlusOne is Resolve against an already loaded list.
func PlusOne(list List, domain string, customSuffixes []string) string {
	d, ok := normalize(domain)
	if !ok {
		return domain
	}
	canonical := publicSuffixPlusOne(list, d)
	if custom, found := SuffixPlusUpToOne(d, customSuffixes); found && len(custom) > len(canonical) {
		return custom
	}
	return canonical
}

func publicSuffixPlusOne(list List, domain string) string {
	ps := list.PublicSuffix(domain)
	if ps == "" || ps == domain || !strings.HasSuffix(domain, "."+ps) {
		return domain
	}
	prefix := strings.TrimSuffix(domain, "."+ps)
	return lastLabel(prefix) + "." + ps
}

// SuffixPlusUpToOne returns the longest match of domain against suffixes:
// the suffix itself when domain equals it, or the suffix plus the label
// directly in front of it.
func SuffixPlusUpToOne(domain string, suffixes []string) (string, bool) {
	best := ""
	for _, raw := range suffixes {
		sfx := strings.Trim(strings.ToLower(strings.TrimSpace(raw)), ".")
		if sfx == "" {
			continue
		}
		var candidate string
		switch {
		case domain == sfx:
			candidate = domain
		case strings.HasSuffix(domain, "."+sfx):
			prefix := strings.TrimSuffix(domain, "."+sfx)
			candidate = lastLabel(prefix) + "." + sfx
		default:
			continue
		}
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best, best != ""
}

func lastLabel(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// normalize lower-cases and validates a host name. IPs are rejected.
func normalize(domain string) (string, bool) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" || len(d) > 253 {
		return "", false
	}
	if net.ParseIP(strings.Trim(d, "[]")) != nil {
		return "", false
	}
	ascii, err := idna.Lookup.ToASCII(d)
	if err != nil {
		return "", false
	}
	for _, label := range strings.Split(ascii, ".") {
		if !validLabel(label) {
			return "", false
		}
	}
	return ascii, true
}

func validLabel(l string) bool {
	if l == "" || len(l) > 63 || l[0] == '-' || l[len(l)-1] == '-' {
		return false
	}
	for i := 0; i < len(l); i++ {
		c := l[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}
