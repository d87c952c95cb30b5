// Package trust decides which apps are browsers whose web origin annotations
// can be believed, and how they attribute origins to page elements.
package trust

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/base64"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

//go:embed browsers.yaml
var builtinTable []byte

// PackageInspector reads the signing certificates of an installed package.
type PackageInspector interface {
	SigningCertificates(ctx context.Context, pkg string) ([][]byte, error)
}

// ComputeCertificatesHash hashes each certificate with SHA-256, base64 encodes
// the digests, sorts them and joins them with ";".
func ComputeCertificatesHash(certs [][]byte) string {
	hashes := make([]string, 0, len(certs))
	for _, c := range certs {
		sum := sha256.Sum256(c)
		hashes = append(hashes, base64.StdEncoding.EncodeToString(sum[:]))
	}
	sort.Strings(hashes)
	return strings.Join(hashes, ";")
}

type record struct {
	info BrowserInfo
	pins []string
}

// Registry is the immutable browser trust table.
type Registry struct {
	records   map[string]record
	inspector PackageInspector
	logger    logging.Logger
}

// Options configure NewRegistry.
type Options struct {
	// Pins maps a package to accepted certificate hashes.
	Pins map[string][]string
	// Extra entries are added to, or replace, the built-in table.
	Extra []Entry
}

// BuiltinEntries returns the embedded browser table.
func BuiltinEntries() ([]Entry, error) {
	var doc struct {
		Browsers []Entry `yaml:"browsers"`
	}
	if err := yaml.Unmarshal(builtinTable, &doc); err != nil {
		return nil, fmt.Errorf("decode builtin browser table: %w", err)
	}
	return doc.Browsers, nil
}

// NewRegistry builds a registry from the built-in table plus opts.
func NewRegistry(inspector PackageInspector, opts Options, logger logging.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	builtin, err := BuiltinEntries()
	if err != nil {
		return nil, err
	}

	records := make(map[string]record, len(builtin)+len(opts.Extra))
	for _, e := range append(builtin, opts.Extra...) {
		pkg := strings.TrimSpace(e.Package)
		if pkg == "" {
			return nil, fmt.Errorf("browser entry without package")
		}
		records[pkg] = record{
			info: BrowserInfo{Package: pkg, Method: e.Method, SaveFlags: e.SaveFlags},
			pins: slices.Clone(e.CertificateHashes),
		}
	}
	for pkg, pins := range opts.Pins {
		rec, ok := records[pkg]
		if !ok {
			return nil, fmt.Errorf("certificate pin for unknown browser %q", pkg)
		}
		rec.pins = append(rec.pins, pins...)
		records[pkg] = rec
	}

	return &Registry{
		records:   records,
		inspector: inspector,
		logger:    logger.With(logging.Field{Key: "component", Value: "trust"}),
	}, nil
}

// Known returns the table entry for pkg without verifying its identity.
func (r *Registry) Known(pkg string) (BrowserInfo, bool) {
	rec, ok := r.records[pkg]
	return rec.info, ok
}

// Packages lists the packages in the table, sorted.
func (r *Registry) Packages() []string {
	out := make([]string, 0, len(r.records))
	for p := range r.records {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Pinned reports whether pkg has at least one certificate pin.
func (r *Registry) Pinned(pkg string) bool {
	return len(r.records[pkg].pins) > 0
}

// Lookup returns the browser info for pkg when pkg is in the table and its
// signing certificates match a pin. Every failure is a miss.
func (r *Registry) Lookup(ctx context.Context, pkg string) (BrowserInfo, bool) {
	rec, ok := r.records[pkg]
	if !ok {
		return BrowserInfo{}, false
	}
	if len(rec.pins) == 0 || r.inspector == nil {
		r.logger.Debug("browser has no usable pin", logging.Field{Key: "package", Value: pkg})
		return BrowserInfo{}, false
	}
	certs, err := r.inspector.SigningCertificates(ctx, pkg)
	if err != nil {
		r.logger.Warn("could not read signing certificates",
			logging.Field{Key: "package", Value: pkg},
			logging.Field{Key: "error", Value: err.Error()})
		return BrowserInfo{}, false
	}
	if len(certs) == 0 {
		return BrowserInfo{}, false
	}
	if !slices.Contains(rec.pins, ComputeCertificatesHash(certs)) {
		r.logger.Warn("certificate hash mismatch for known browser", logging.Field{Key: "package", Value: pkg})
		return BrowserInfo{}, false
	}
	return rec.info, true
}
