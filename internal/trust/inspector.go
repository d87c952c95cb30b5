package trust

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrNoCertificates = errors.New("trust: no signing certificates for package")

// StaticInspector serves certificates known ahead of time, keyed by package.
type StaticInspector map[string][][]byte

func (s StaticInspector) SigningCertificates(_ context.Context, pkg string) ([][]byte, error) {
	certs, ok := s[pkg]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoCertificates, pkg)
	}
	return certs, nil
}

// DecodeCertificates builds a StaticInspector from base64 DER certificates.
func DecodeCertificates(encoded map[string][]string) (StaticInspector, error) {
	out := make(StaticInspector, len(encoded))
	for pkg, list := range encoded {
		for i, s := range list {
			der, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("certificate %d of %s: %w", i, pkg, err)
			}
			out[pkg] = append(out[pkg], der)
		}
	}
	return out, nil
}

type certsKey struct{}

type reported struct {
	pkg   string
	certs [][]byte
}

// WithReportedCertificates attaches the certificates a remote device reported
// for pkg to ctx. RequestInspector prefers them over its fallback.
func WithReportedCertificates(ctx context.Context, pkg string, certs [][]byte) context.Context {
	if len(certs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, certsKey{}, reported{pkg: pkg, certs: certs})
}

// RequestInspector reads certificates reported with the request and falls
// back to another inspector.
type RequestInspector struct {
	Fallback PackageInspector
}

func (ri RequestInspector) SigningCertificates(ctx context.Context, pkg string) ([][]byte, error) {
	if r, ok := ctx.Value(certsKey{}).(reported); ok && r.pkg == pkg {
		return r.certs, nil
	}
	if ri.Fallback == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoCertificates, pkg)
	}
	return ri.Fallback.SigningCertificates(ctx, pkg)
}
