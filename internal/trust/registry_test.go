package trust_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/testutil"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
)

func b64sha(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ─── ComputeCertificatesHash ──────────────────────────────────────────

func TestComputeCertificatesHash(t *testing.T) {
	t.Parallel()

	a, b := []byte("cert-a"), []byte("cert-b")
	ha, hb := b64sha(a), b64sha(b)
	want := ha + ";" + hb
	if hb < ha {
		want = hb + ";" + ha
	}

	if got := trust.ComputeCertificatesHash([][]byte{a, b}); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := trust.ComputeCertificatesHash([][]byte{b, a}); got != want {
		t.Errorf("order must not matter: got %q, want %q", got, want)
	}
	if got := trust.ComputeCertificatesHash([][]byte{a}); got != ha {
		t.Errorf("single cert: got %q, want %q", got, ha)
	}
	if got := trust.ComputeCertificatesHash(nil); got != "" {
		t.Errorf("no certs: got %q", got)
	}
}

// ─── Registry ─────────────────────────────────────────────────────────

func TestBuiltinEntries(t *testing.T) {
	t.Parallel()

	entries, err := trust.BuiltinEntries()
	if err != nil {
		t.Fatalf("BuiltinEntries: %v", err)
	}
	methods := map[string]trust.MultiOriginMethod{}
	for _, e := range entries {
		methods[e.Package] = e.Method
	}
	if methods["com.android.chrome"] != trust.MultiOriginWebView {
		t.Errorf("chrome method = %s", methods["com.android.chrome"])
	}
	if methods["org.mozilla.firefox"] != trust.MultiOriginField {
		t.Errorf("firefox method = %s", methods["org.mozilla.firefox"])
	}
	if m, ok := methods["com.duckduckgo.mobile.android"]; !ok || m != trust.MultiOriginNone {
		t.Errorf("duckduckgo method = %s (present=%v)", m, ok)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	chromeCert := []byte("chrome-signing-cert")
	inspector := &testutil.PackageInspector{Certs: map[string][][]byte{
		"com.android.chrome":  {chromeCert},
		"org.mozilla.firefox": {[]byte("not-the-pinned-cert")},
		"com.example.notes":   {[]byte("notes")},
		"com.brave.browser":   {[]byte("brave")},
	}}
	reg, err := trust.NewRegistry(inspector, trust.Options{
		Pins: map[string][]string{
			"com.android.chrome":  {b64sha(chromeCert)},
			"org.mozilla.firefox": {b64sha([]byte("firefox-signing-cert"))},
		},
	}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name string
		pkg  string
		ok   bool
	}{
		{"pinned and matching", "com.android.chrome", true},
		{"pinned but mismatching", "org.mozilla.firefox", false},
		{"known without pin", "com.brave.browser", false},
		{"not a browser", "com.example.notes", false},
		{"not installed", "com.chrome.beta", false},
	}
	for _, tt := range tests {
		info, ok := reg.Lookup(context.Background(), tt.pkg)
		if ok != tt.ok {
			t.Errorf("%s: Lookup(%q) ok = %v, want %v", tt.name, tt.pkg, ok, tt.ok)
		}
		if ok && info.Method != trust.MultiOriginWebView {
			t.Errorf("%s: method = %s", tt.name, info.Method)
		}
	}
	if !reg.Pinned("com.android.chrome") || reg.Pinned("com.brave.browser") {
		t.Errorf("unexpected pin state")
	}
}

func TestLookup_InspectorErrorIsMiss(t *testing.T) {
	t.Parallel()

	inspector := &testutil.PackageInspector{Err: errors.New("package vanished")}
	reg, err := trust.NewRegistry(inspector, trust.Options{
		Pins: map[string][]string{"com.android.chrome": {"x"}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, ok := reg.Lookup(context.Background(), "com.android.chrome"); ok {
		t.Errorf("inspector failure must not grant trust")
	}
	if len(inspector.Calls) != 1 {
		t.Errorf("inspector calls = %v", inspector.Calls)
	}
}

func TestNewRegistry_ExtraEntriesAndUnknownPin(t *testing.T) {
	t.Parallel()

	cert := []byte("custom")
	reg, err := trust.NewRegistry(&testutil.PackageInspector{Certs: map[string][][]byte{"org.example.browser": {cert}}},
		trust.Options{Extra: []trust.Entry{{
			Package:           "org.example.browser",
			Method:            trust.MultiOriginField,
			SaveFlags:         trust.DelaySave,
			CertificateHashes: []string{b64sha(cert)},
		}}}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	info, ok := reg.Lookup(context.Background(), "org.example.browser")
	if !ok || info.Method != trust.MultiOriginField || !info.SaveFlags.Has(trust.DelaySave) {
		t.Errorf("unexpected lookup result %+v ok=%v", info, ok)
	}

	_, err = trust.NewRegistry(nil, trust.Options{Pins: map[string][]string{"com.unknown": {"x"}}}, nil)
	if err == nil {
		t.Errorf("expected error for pin on unknown package")
	}
}

// ─── YAML codecs ──────────────────────────────────────────────────────

func TestEntry_YAML(t *testing.T) {
	t.Parallel()

	var e trust.Entry
	src := "package: a.b\nmethod: WebView\nsave_flags: [delay_save, save_on_all_views_invisible]\n"
	if err := yaml.Unmarshal([]byte(src), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Method != trust.MultiOriginWebView {
		t.Errorf("method = %s", e.Method)
	}
	if e.SaveFlags != trust.DelaySave|trust.SaveOnAllViewsInvisible {
		t.Errorf("flags = %s", e.SaveFlags)
	}

	if err := yaml.Unmarshal([]byte("method: teleport\n"), &e); err == nil {
		t.Errorf("expected error for unknown method")
	}
	if err := yaml.Unmarshal([]byte("save_flags: [sometimes]\n"), &e); err == nil {
		t.Errorf("expected error for unknown save flag")
	}
}

func TestRegistry_TableAccessors(t *testing.T) {
	t.Parallel()

	reg, err := trust.NewRegistry(nil, trust.Options{
		Pins:  map[string][]string{"com.android.chrome": {"pin"}},
		Extra: []trust.Entry{{Package: "org.example.browser", Method: trust.MultiOriginField}},
	}, nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	pkgs := reg.Packages()
	for i := 1; i < len(pkgs); i++ {
		if pkgs[i-1] >= pkgs[i] {
			t.Fatalf("packages not sorted: %v", pkgs)
		}
	}
	info, ok := reg.Known("org.example.browser")
	if !ok || info.Method != trust.MultiOriginField || info.Package != "org.example.browser" {
		t.Errorf("Known(extra) = %+v, %v", info, ok)
	}
	if info, ok := reg.Known("com.android.chrome"); !ok || info.Method != trust.MultiOriginWebView {
		t.Errorf("Known(chrome) = %+v, %v", info, ok)
	}
	if _, ok := reg.Known("com.example.notes"); ok {
		t.Error("Known must not report apps outside the table")
	}
	if !reg.Pinned("com.android.chrome") || reg.Pinned("org.example.browser") {
		t.Error("Pinned reports the wrong packages")
	}
}
