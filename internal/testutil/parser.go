package testutil

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/formparser"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/suffix"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
)

// RendererPackage is a trusted WebView-method browser in parsers built by
// NewParser.
const RendererPackage = "test.renderer"

// CertHash is the pin for a certificate whose DER bytes are cert.
func CertHash(cert string) string {
	sum := sha256.Sum256([]byte(cert))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// NewParser returns a parser backed by the embedded suffix list in which
// RendererPackage is trusted.
func NewParser(t testing.TB, logger logging.Logger) *formparser.Parser {
	t.Helper()
	if logger == nil {
		logger = &DummyLogger{}
	}
	inspector := &PackageInspector{Certs: map[string][][]byte{RendererPackage: {[]byte(RendererPackage)}}}
	reg, err := trust.NewRegistry(inspector, trust.Options{
		Extra: []trust.Entry{{
			Package:           RendererPackage,
			Method:            trust.MultiOriginWebView,
			CertificateHashes: []string{CertHash(RendererPackage)},
		}},
	}, logger)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	svc, err := suffix.NewService(suffix.Embedded, logger)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	p, err := formparser.New(reg, svc, nil, logger)
	if err != nil {
		t.Fatalf("formparser.New: %v", err)
	}
	return p
}
