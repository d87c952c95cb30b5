package testutil

import (
	"context"
	"strings"
	"sync"
)

// ─── Suffix list ───────────────────────────────────────────────────────

// SuffixList is a fixed public-suffix list. Domains under none of its
// entries fall back to their last label, like an unlisted TLD.
type SuffixList []string

func (l SuffixList) PublicSuffix(domain string) string {
	best := ""
	for _, s := range l {
		if (domain == s || strings.HasSuffix(domain, "."+s)) && len(s) > len(best) {
			best = s
		}
	}
	if best != "" {
		return best
	}
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		return domain[i+1:]
	}
	return domain
}

func (l SuffixList) String() string { return "testutil.SuffixList" }

// ─── Package inspector ────────────────────────────────────────────────

// PackageInspector returns fixed signing certificates per package.
type PackageInspector struct {
	mu    sync.Mutex
	Certs map[string][][]byte
	Err   error
	Calls []string
}

func (p *PackageInspector) SigningCertificates(_ context.Context, pkg string) ([][]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, pkg)
	if p.Err != nil {
		return nil, p.Err
	}
	certs, ok := p.Certs[pkg]
	if !ok {
		return nil, ErrPackageNotFound
	}
	return certs, nil
}
