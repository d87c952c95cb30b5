package trust

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// MultiOriginMethod describes how a browser attributes web origins to the
// elements of a page.
type MultiOriginMethod int

const (
	// MultiOriginNone: only the URL bar origin is trustworthy.
	MultiOriginNone MultiOriginMethod = iota
	// MultiOriginWebView: WebView nodes carry the origin; it must be passed
	// down to their descendants.
	MultiOriginWebView
	// MultiOriginField: every field carries its own origin.
	MultiOriginField
)

func (m MultiOriginMethod) String() string {
	switch m {
	case MultiOriginWebView:
		return "webview"
	case MultiOriginField:
		return "field"
	default:
		return "none"
	}
}

// ParseMultiOriginMethod parses the lower-case names produced by String.
func ParseMultiOriginMethod(s string) (MultiOriginMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return MultiOriginNone, nil
	case "webview":
		return MultiOriginWebView, nil
	case "field":
		return MultiOriginField, nil
	default:
		return MultiOriginNone, fmt.Errorf("unknown multi-origin method %q", s)
	}
}

func (m *MultiOriginMethod) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseMultiOriginMethod(node.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m MultiOriginMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// SaveFlags are the platform save-request flags a browser needs.
type SaveFlags uint8

const (
	SaveOnAllViewsInvisible SaveFlags = 1 << iota
	DontSaveOnFinish
	DelaySave
)

var saveFlagNames = []struct {
	flag SaveFlags
	name string
}{
	{SaveOnAllViewsInvisible, "save_on_all_views_invisible"},
	{DontSaveOnFinish, "dont_save_on_finish"},
	{DelaySave, "delay_save"},
}

func (f SaveFlags) Has(flag SaveFlags) bool { return f&flag != 0 }

func (f SaveFlags) String() string {
	var names []string
	for _, n := range saveFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

func (f *SaveFlags) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	var out SaveFlags
outer:
	for _, raw := range names {
		for _, n := range saveFlagNames {
			if n.name == raw {
				out |= n.flag
				continue outer
			}
		}
		return fmt.Errorf("unknown save flag %q", raw)
	}
	*f = out
	return nil
}

// BrowserInfo is what the engine needs to know about a trusted browser.
type BrowserInfo struct {
	Package   string
	Method    MultiOriginMethod
	SaveFlags SaveFlags
}

// Entry is one row of the browser table.
type Entry struct {
	Package           string            `yaml:"package"`
	Method            MultiOriginMethod `yaml:"method"`
	SaveFlags         SaveFlags         `yaml:"save_flags"`
	CertificateHashes []string          `yaml:"certificate_hashes,omitempty"`
}
