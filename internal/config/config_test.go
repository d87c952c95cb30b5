package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/config"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ─── Load ──────────────────────────────────────────────────────────────

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(config.DefaultConfig(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != config.DefaultConfig().Server.Addr {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "autofill.yaml")
	writeFile(t, path, `
log:
  level: debug
autofill:
  custom_suffixes: [" Corp.Example.COM. ", "intra.example.org"]
  pins:
    com.android.chrome: ["abc="]
  browsers:
    - package: org.example.browser
      method: field
      save_flags: [delay_save]
server:
  addr: ":9090"
webclient:
  client: chromedp
  timeout: 5s
inspect:
  concurrency: 2
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if diff := cmp.Diff([]string{"corp.example.com", "intra.example.org"}, cfg.Autofill.CustomSuffixes); diff != "" {
		t.Errorf("custom suffixes (-want +got):\n%s", diff)
	}
	if got := cfg.Autofill.Pins["com.android.chrome"]; len(got) != 1 || got[0] != "abc=" {
		t.Errorf("pins = %v", cfg.Autofill.Pins)
	}
	if len(cfg.Autofill.Browsers) != 1 || cfg.Autofill.Browsers[0].Method != trust.MultiOriginField {
		t.Errorf("browsers = %+v", cfg.Autofill.Browsers)
	}
	if !cfg.Autofill.Browsers[0].SaveFlags.Has(trust.DelaySave) {
		t.Errorf("save flags = %v", cfg.Autofill.Browsers[0].SaveFlags)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.WebClient.Client != webclient.ClientChromedp || cfg.WebClient.Timeout != 5*time.Second {
		t.Errorf("webclient = %+v", cfg.WebClient)
	}
	// Untouched fields keep their defaults.
	if cfg.WebClient.IdleAfter != 2*time.Second {
		t.Errorf("idle_after = %v", cfg.WebClient.IdleAfter)
	}
	if cfg.Inspect.Concurrency != 2 || cfg.Inspect.MaxFrameDepth != 3 {
		t.Errorf("inspect = %+v", cfg.Inspect)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"bad yaml":          "log: [",
		"bad level":         "log: {level: loud}",
		"empty suffix":      "autofill: {custom_suffixes: [\" \"]}",
		"url suffix":        "autofill: {custom_suffixes: [\"https://x.com\"]}",
		"pin without hash":  "autofill: {pins: {com.android.chrome: []}}",
		"bad signature":     "autofill: {signatures: {com.android.chrome: [\"%%%\"]}}",
		"browser no pkg":    "autofill: {browsers: [{method: none}]}",
		"bad method":        "autofill: {browsers: [{package: a, method: tabs}]}",
		"empty addr":        "server: {addr: \"\"}",
		"unknown backend":   "webclient: {client: lynx}",
		"zero concurrency":  "inspect: {concurrency: 0}",
		"negative frames":   "inspect: {max_frame_depth: -1}",
		"negative body cap": "server: {max_body_bytes: -1}",
	}
	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "c.yaml")
			writeFile(t, path, body)
			if _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()
	var cfg *config.Config
	if err := cfg.Validate(); err != config.ErrNilConfig {
		t.Fatalf("err = %v, want ErrNilConfig", err)
	}
}

func TestValidate_DefaultsUnchanged(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Autofill.CustomSuffixes != nil {
		t.Errorf("custom suffixes = %#v, want nil", cfg.Autofill.CustomSuffixes)
	}
	if diff := cmp.Diff(config.DefaultConfig(), cfg); diff != "" {
		t.Errorf("Validate changed the defaults (-want +got):\n%s", diff)
	}
}

// ─── Loader ────────────────────────────────────────────────────────────

func TestLoader_ReloadsOnWrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "autofill.yaml")
	writeFile(t, path, "autofill: {custom_suffixes: [a.example]}\n")

	l := config.NewLoader(path)
	defer l.Close()
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	changed := make(chan *config.Config, 4)
	l.OnChange(func(c *config.Config) { changed <- c })
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, path, "autofill: {custom_suffixes: [b.example]}\n")

	select {
	case c := <-changed:
		if diff := cmp.Diff([]string{"b.example"}, c.Autofill.CustomSuffixes); diff != "" {
			t.Errorf("reloaded suffixes (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
	if got := l.Config().Autofill.CustomSuffixes; len(got) != 1 || got[0] != "b.example" {
		t.Errorf("Config() = %v", got)
	}
}

func TestLoader_InvalidEditKeepsPrevious(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "autofill.yaml")
	writeFile(t, path, "server: {addr: \":1\"}\n")

	l := config.NewLoader(path)
	defer l.Close()
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, path, "log: {level: loud}\n")

	select {
	case err := <-l.Errors():
		if !strings.Contains(err.Error(), "reload config") {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error within 5s")
	}
	if l.Config().Server.Addr != ":1" {
		t.Errorf("config replaced by invalid edit: %+v", l.Config().Server)
	}
}

func TestLoader_IgnoresSiblingFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "autofill.yaml")
	writeFile(t, path, "")

	l := config.NewLoader(path)
	defer l.Close()
	if _, err := l.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	changed := make(chan struct{}, 1)
	l.OnChange(func(*config.Config) { changed <- struct{}{} })
	if err := l.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, filepath.Join(dir, "other.yaml"), "log: {level: debug}\n")

	select {
	case <-changed:
		t.Fatal("reloaded for an unrelated file")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestLoader_CloseWithoutWatch(t *testing.T) {
	t.Parallel()
	l := config.NewLoader("")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Watch(); err == nil {
		t.Fatal("expected error watching without path")
	}
}
