// Package config loads the YAML configuration shared by the CLI and server.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/trust"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/webclient"
)

var ErrNilConfig = errors.New("config: nil config")

// Config is the on-disk configuration.
type Config struct {
	Log       LogConfig        `yaml:"log"`
	Autofill  AutofillConfig   `yaml:"autofill"`
	Server    ServerConfig     `yaml:"server"`
	WebClient webclient.Config `yaml:"webclient"`
	Inspect   InspectConfig    `yaml:"inspect"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// AutofillConfig feeds the matching engine.
type AutofillConfig struct {
	// CustomSuffixes widen canonical domains beyond the public suffix list,
	// e.g. "corp.example.com" keeps "a.corp.example.com" and
	// "b.corp.example.com" apart.
	CustomSuffixes []string `yaml:"custom_suffixes"`

	// Pins maps a browser package to accepted certificate hashes as produced
	// by trust.ComputeCertificatesHash.
	Pins map[string][]string `yaml:"pins"`

	// Signatures holds base64 DER signing certificates per package for
	// hosts that cannot ask a package manager.
	Signatures map[string][]string `yaml:"signatures"`

	// Browsers adds to or overrides the built-in browser table.
	Browsers []trust.Entry `yaml:"browsers"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

type InspectConfig struct {
	// Concurrency bounds parallel page fetches.
	Concurrency int `yaml:"concurrency"`
	// MaxFrameDepth bounds iframe recursion when building page trees.
	MaxFrameDepth int `yaml:"max_frame_depth"`
	// MaxPages caps the pages a crawl discovers per target.
	MaxPages int `yaml:"max_pages"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  15 * time.Second,
			MaxBodyBytes: 4 << 20,
		},
		WebClient: webclient.Config{
			Client:    webclient.ClientNetHTTP,
			Timeout:   30 * time.Second,
			IdleAfter: 2 * time.Second,
		},
		Inspect: InspectConfig{
			Concurrency:   4,
			MaxFrameDepth: 3,
			MaxPages:      50,
		},
	}
}

// Validate checks cfg and normalizes custom suffixes in place.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	var suffixes []string
	for _, s := range c.Autofill.CustomSuffixes {
		s = strings.Trim(strings.ToLower(strings.TrimSpace(s)), ".")
		if s == "" {
			return errors.New("autofill.custom_suffixes: empty entry")
		}
		if strings.ContainsAny(s, "/: ") {
			return fmt.Errorf("autofill.custom_suffixes: %q is not a domain", s)
		}
		suffixes = append(suffixes, s)
	}
	c.Autofill.CustomSuffixes = suffixes

	for pkg, pins := range c.Autofill.Pins {
		if strings.TrimSpace(pkg) == "" {
			return errors.New("autofill.pins: empty package name")
		}
		if len(pins) == 0 {
			return fmt.Errorf("autofill.pins: no hashes for %s", pkg)
		}
	}
	for pkg, sigs := range c.Autofill.Signatures {
		for i, s := range sigs {
			if _, err := base64.StdEncoding.DecodeString(s); err != nil {
				return fmt.Errorf("autofill.signatures: %s[%d]: %w", pkg, i, err)
			}
		}
	}
	for i, b := range c.Autofill.Browsers {
		if strings.TrimSpace(b.Package) == "" {
			return fmt.Errorf("autofill.browsers[%d]: missing package", i)
		}
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr: required")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes: negative")
	}

	switch c.WebClient.Client {
	case "", webclient.ClientNetHTTP, webclient.ClientChromedp:
	default:
		return fmt.Errorf("webclient.client: unknown backend %q", c.WebClient.Client)
	}

	if c.Inspect.Concurrency < 1 {
		return errors.New("inspect.concurrency: must be at least 1")
	}
	if c.Inspect.MaxFrameDepth < 0 {
		return errors.New("inspect.max_frame_depth: negative")
	}
	if c.Inspect.MaxPages < 1 {
		return errors.New("inspect.max_pages: must be at least 1")
	}
	return nil
}

// Load reads path over the defaults and validates the result. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("decode YAML: %w", err)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
